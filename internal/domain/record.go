package domain

import "time"

// MetaSourceURI is the metadata key carrying the imported entry's URL.
const MetaSourceURI = "source_uri"

// Record is a destination content record.
type Record struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Status    string            `json:"status"`
	Format    string            `json:"format,omitempty"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created_at"`
	Meta      map[string]string `json:"meta"`
}

// SourceURI returns the dedupe key of the record.
func (r Record) SourceURI() string {
	return r.Meta[MetaSourceURI]
}
