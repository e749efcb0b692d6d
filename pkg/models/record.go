package models

import "time"

// Record is a stored record: a bag of named fields, a subset of which are
// sensitive and subject to encryption at rest.
type Record struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a deep-enough copy for field-level transformation: the
// fields map is copied, values are shared. String values are immutable in
// Go, so replacing a sensitive field in the clone never touches the
// original.
func (r *Record) Clone() *Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return &Record{
		ID:        r.ID,
		Fields:    fields,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
