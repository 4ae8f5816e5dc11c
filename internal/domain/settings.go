package domain

import (
	"strings"
	"time"
)

const (
	DefaultHost   = "https://app.wallabag.it"
	DefaultType   = "post"
	DefaultStatus = StatusDraft
	DefaultFormat = FormatStandard
)

const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPrivate   = "private"
)

// FormatStandard means the record carries no presentation format.
const FormatStandard = "standard"

var Statuses = []string{StatusPublished, StatusDraft, StatusPending, StatusPrivate}

var Formats = []string{
	FormatStandard, "aside", "chat", "gallery", "link",
	"image", "quote", "status", "video", "audio",
}

// Settings is the operator-managed import configuration.
type Settings struct {
	Host         string     `db:"host" json:"host"`
	ClientID     string     `db:"client_id" json:"client_id"`
	ClientSecret string     `db:"client_secret" json:"client_secret"`
	User         string     `db:"user_name" json:"user"`
	Pass         string     `db:"pass" json:"pass"`
	Tags         string     `db:"tags" json:"tags"`
	PostType     string     `db:"post_type" json:"post_type"`
	PostStatus   string     `db:"post_status" json:"post_status"`
	PostFormat   string     `db:"post_format" json:"post_format"`
	LastRun      *time.Time `db:"last_run" json:"last_run"`
}

// DefaultSettings returns the settings used before the operator saves any.
func DefaultSettings() Settings {
	return Settings{
		Host:       DefaultHost,
		PostType:   DefaultType,
		PostStatus: DefaultStatus,
		PostFormat: DefaultFormat,
	}
}

// Configured reports whether every connection field is set.
func (s Settings) Configured() bool {
	for _, v := range []string{s.Host, s.ClientID, s.ClientSecret, s.User, s.Pass} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Overrides are deployment-level credentials that win over stored settings.
type Overrides struct {
	User string
	Pass string
}

// Apply returns s with the non-empty overrides in place.
func (o Overrides) Apply(s Settings) Settings {
	if o.User != "" {
		s.User = o.User
	}
	if o.Pass != "" {
		s.Pass = o.Pass
	}
	return s
}

func Contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
