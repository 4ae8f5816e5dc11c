package domain

import "time"

// Entry is a saved article in the wallabag instance.
type Entry struct {
	ID          int64
	URL         string
	Title       string
	CreatedAt   time.Time
	Annotations []Annotation
}

// Annotation is a note and/or highlighted quote attached to an entry.
// Either field may be empty.
type Annotation struct {
	Text  string
	Quote string
}

// Token is a bearer token valid for a single run.
type Token struct {
	AccessToken string
	ExpiresIn   int
}

// FetchParams are the query parameters of one entries request.
type FetchParams struct {
	PerPage int
	Tags    string
	Since   *time.Time
}
