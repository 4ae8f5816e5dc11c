package service

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"wallabag_importer/internal/domain"
	"wallabag_importer/internal/security"
)

var ErrInvalidURL = errors.New("invalid entry url")

// ValidateEntryURL accepts absolute http(s) URLs with a host. Anything else,
// "place:..." or "javascript:..." included, is rejected.
func ValidateEntryURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !isWebScheme(u.Scheme) || u.Hostname() == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

func isWebScheme(scheme string) bool {
	return strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https")
}

// RecordBuilder maps one entry into a destination record.
type RecordBuilder struct {
	sanitizer   *security.TextSanitizer
	location    *time.Location
	formatTypes []string
}

func NewRecordBuilder(sanitizer *security.TextSanitizer, location *time.Location, formatTypes []string) *RecordBuilder {
	if location == nil {
		location = time.Local
	}
	return &RecordBuilder{
		sanitizer:   sanitizer,
		location:    location,
		formatTypes: formatTypes,
	}
}

// Build returns the record for entry. now stands in for a missing creation
// timestamp.
func (b *RecordBuilder) Build(entry domain.Entry, settings domain.Settings, now time.Time) (domain.Record, error) {
	if err := ValidateEntryURL(entry.URL); err != nil {
		return domain.Record{}, err
	}

	// Stored unescaped; the body gets the escaped form.
	title := b.sanitizer.Plain(entry.Title)

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	recordType := orDefault(settings.PostType, domain.DefaultType)

	format := ""
	if settings.PostFormat != "" && settings.PostFormat != domain.FormatStandard &&
		domain.Contains(b.formatTypes, recordType) {
		format = settings.PostFormat
	}

	return domain.Record{
		Type:      recordType,
		Status:    orDefault(settings.PostStatus, domain.DefaultStatus),
		Format:    format,
		Title:     title,
		Body:      b.body(entry),
		CreatedAt: createdAt.In(b.location),
		Meta: map[string]string{
			domain.MetaSourceURI: entry.URL,
		},
	}, nil
}

func (b *RecordBuilder) body(entry domain.Entry) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<i>Bookmarked <a class="u-bookmark-of" href="%s">%s</a>.</i>`,
		html.EscapeString(entry.URL), b.sanitizer.Line(entry.Title))

	for _, a := range entry.Annotations {
		if text := b.sanitizer.Block(a.Text); text != "" {
			sb.WriteString("\n\n")
			sb.WriteString(text)
		}
		if quote := b.sanitizer.Block(a.Quote); quote != "" {
			sb.WriteString("\n\n<blockquote>")
			sb.WriteString(quote)
			sb.WriteString("</blockquote>")
		}
	}

	return strings.TrimSpace(sb.String())
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
