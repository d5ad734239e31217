package store

import "context"

// Schema DDL. Everything is "IF NOT EXISTS" so first use is idempotent.
var tableDDL = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT,
		birth_date DATE,
		enrollment_date DATE NOT NULL DEFAULT CURRENT_DATE,
		status TEXT CHECK(status IN ('active', 'inactive', 'graduated')) DEFAULT 'active',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		code TEXT UNIQUE NOT NULL,
		description TEXT,
		credits INTEGER NOT NULL DEFAULT 3,
		semester TEXT,
		instructor TEXT,
		capacity INTEGER DEFAULT 30,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS enrollments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		course_id INTEGER NOT NULL,
		enrollment_date DATE NOT NULL DEFAULT CURRENT_DATE,
		grade REAL CHECK(grade >= 0 AND grade <= 100),
		status TEXT CHECK(status IN ('enrolled', 'completed', 'dropped')) DEFAULT 'enrolled',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (student_id) REFERENCES students(id) ON DELETE CASCADE,
		FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
		UNIQUE(student_id, course_id)
	)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		table_name TEXT NOT NULL,
		operation TEXT NOT NULL,
		record_id INTEGER,
		old_values TEXT,
		new_values TEXT,
		user_id TEXT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Triggers refreshing updated_at on every update of the main tables.
var triggerDDL = []string{
	`CREATE TRIGGER IF NOT EXISTS update_students_timestamp
	AFTER UPDATE ON students
	FOR EACH ROW
	BEGIN
		UPDATE students SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END`,

	`CREATE TRIGGER IF NOT EXISTS update_courses_timestamp
	AFTER UPDATE ON courses
	FOR EACH ROW
	BEGIN
		UPDATE courses SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END`,

	`CREATE TRIGGER IF NOT EXISTS update_enrollments_timestamp
	AFTER UPDATE ON enrollments
	FOR EACH ROW
	BEGIN
		UPDATE enrollments SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END`,
}

func (s *Store) createSchema(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		for _, ddl := range tableDDL {
			if _, err := tx.Exec(ctx, ddl); err != nil {
				return err
			}
		}
		for _, ddl := range triggerDDL {
			if _, err := tx.Exec(ctx, ddl); err != nil {
				return err
			}
		}
		return nil
	})
}
