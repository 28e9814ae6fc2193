package models

import "time"

// AuditOperation names a mutating record operation.
type AuditOperation string

const (
	AuditCreate AuditOperation = "create"
	AuditUpdate AuditOperation = "update"
	AuditDelete AuditOperation = "delete"
)

// AuditEvent is appended to the audit archive after every successful write.
type AuditEvent struct {
	Operation AuditOperation `bson:"operation" json:"operation"`
	UserCode  string         `bson:"user_code" json:"user_code"`
	Count     int            `bson:"count" json:"count"`
	At        time.Time      `bson:"at" json:"at"`
}
