package models

import "time"

// Audit operations recorded for every successful mutation.
const (
	AuditOpCreate = "CREATE"
	AuditOpUpdate = "UPDATE"
	AuditOpDelete = "DELETE"
)

// AuditRecord is an append-only trail entry. Old/NewValues hold JSON
// snapshots of the record before and after the mutation; nil before a
// create and nil after a delete.
type AuditRecord struct {
	ID        int64     `db:"id" json:"id"`
	TableName string    `db:"table_name" json:"table_name"`
	Operation string    `db:"operation" json:"operation"`
	RecordID  int64     `db:"record_id" json:"record_id"`
	OldValues []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues []byte    `db:"new_values" json:"new_values,omitempty"`
	UserID    string    `db:"user_id" json:"user_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
