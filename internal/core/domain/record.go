package domain

import "time"

// ActionRecord is the slice of an action item this service reads and writes.
// The rest of the record belongs to the action tracking store.
type ActionRecord struct {
	ActID     string    `json:"act_id" bson:"act_id"`
	Title     string    `json:"title" bson:"titre"`
	Custom    ValueMap  `json:"custom" bson:"custom"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// SchemaChange is broadcast after a field definition is written so every
// replica drops its cached schema.
type SchemaChange struct {
	Key    string    `json:"key"`
	Op     string    `json:"op"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// CompatibilityReport summarises how many stored values a retyped field
// can no longer read.
type CompatibilityReport struct {
	Key          string    `json:"key"`
	From         FieldType `json:"from"`
	To           FieldType `json:"to"`
	Scanned      int       `json:"scanned"`
	Incompatible int       `json:"incompatible"`
	Samples      []string  `json:"samples,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}
