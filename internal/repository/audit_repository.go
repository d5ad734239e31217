package repository

import (
	"context"
	"encoding/json"

	"eduregistry/internal/models"
	"eduregistry/internal/store"
)

// Audit entries are attributed to the process; there is no user concept in
// the core.
const auditUser = "system"

// appendAudit writes one audit_log row inside the caller's transaction so
// the trail is transactionally consistent with the mutation it describes.
// A failed audit write fails the transaction and rolls the mutation back.
func appendAudit(ctx context.Context, tx *store.Tx, table, op string, recordID int64, oldValues, newValues interface{}) error {
	oldJSON, err := marshalSnapshot(oldValues)
	if err != nil {
		return err
	}
	newJSON, err := marshalSnapshot(newValues)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO audit_log (table_name, operation, record_id, old_values, new_values, user_id) VALUES (?, ?, ?, ?, ?, ?)`,
		table, op, recordID, oldJSON, newJSON, auditUser)
	return err
}

func marshalSnapshot(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// AuditRepository reads the append-only trail. The core never updates or
// deletes audit rows.
type AuditRepository struct {
	db *store.Store
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *store.Store) *AuditRepository {
	return &AuditRepository{db: db}
}

// ListByTable returns the newest audit entries for one table.
func (r *AuditRepository) ListByTable(ctx context.Context, table string, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.AuditRecord
	err := r.db.Select(ctx, &records,
		`SELECT * FROM audit_log WHERE table_name = ? ORDER BY id DESC LIMIT ?`, table, limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByRecord returns the full trail for one record, oldest first.
func (r *AuditRepository) ListByRecord(ctx context.Context, table string, recordID int64) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := r.db.Select(ctx, &records,
		`SELECT * FROM audit_log WHERE table_name = ? AND record_id = ? ORDER BY id`, table, recordID)
	if err != nil {
		return nil, err
	}
	return records, nil
}
