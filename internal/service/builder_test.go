package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallabag_importer/internal/domain"
	"wallabag_importer/internal/security"
)

func newTestBuilder(t *testing.T, loc *time.Location) *RecordBuilder {
	t.Helper()
	return NewRecordBuilder(security.NewTextSanitizer(), loc, []string{"post"})
}

func TestValidateEntryURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{url: "https://a.example/p", valid: true},
		{url: "http://a.example", valid: true},
		{url: "HTTPS://a.example/p", valid: true},
		{url: "ftp://files.example/x", valid: false},
		{url: "javascript://x/%0aalert(document.cookie)", valid: false},
		{url: "JavaScript://x/%0aalert(1)", valid: false},
		{url: "data:text/html,<script>alert(1)</script>", valid: false},
		{url: "https://:8080/p", valid: false},
		{url: "place:sort=8&maxResults=10", valid: false},
		{url: "/relative/path", valid: false},
		{url: "", valid: false},
		{url: "https://bad host/", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateEntryURL(tt.url)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidURL))
			}
		})
	}
}

func TestBuild_BookmarkOnly(t *testing.T) {
	b := newTestBuilder(t, time.UTC)
	entry := domain.Entry{
		URL:       "https://a.example/p",
		Title:     "Hello",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	record, err := b.Build(entry, domain.DefaultSettings(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, "Hello", record.Title)
	assert.Equal(t, `<i>Bookmarked <a class="u-bookmark-of" href="https://a.example/p">Hello</a>.</i>`, record.Body)
	assert.Equal(t, "post", record.Type)
	assert.Equal(t, "draft", record.Status)
	assert.Equal(t, "", record.Format)
	assert.Equal(t, map[string]string{domain.MetaSourceURI: "https://a.example/p"}, record.Meta)
}

func TestBuild_AnnotationsInOrder(t *testing.T) {
	b := newTestBuilder(t, time.UTC)
	entry := domain.Entry{
		URL:   "https://a.example/p",
		Title: "Hello",
		Annotations: []domain.Annotation{
			{Text: "note"},
			{Quote: "excerpt"},
		},
	}

	record, err := b.Build(entry, domain.DefaultSettings(), time.Now())

	require.NoError(t, err)
	assert.Equal(t,
		`<i>Bookmarked <a class="u-bookmark-of" href="https://a.example/p">Hello</a>.</i>`+
			"\n\nnote\n\n<blockquote>excerpt</blockquote>",
		record.Body)
}

func TestBuild_AnnotationWithTextAndQuote(t *testing.T) {
	b := newTestBuilder(t, time.UTC)
	entry := domain.Entry{
		URL:   "https://a.example/p",
		Title: "Hello",
		Annotations: []domain.Annotation{
			{Text: "my take", Quote: "their words"},
			{},
		},
	}

	record, err := b.Build(entry, domain.DefaultSettings(), time.Now())

	require.NoError(t, err)
	assert.Contains(t, record.Body, ".</i>\n\nmy take\n\n<blockquote>their words</blockquote>")
	assert.NotContains(t, record.Body, "<blockquote></blockquote>")
}

func TestBuild_SanitizesTitleAndAnnotations(t *testing.T) {
	b := newTestBuilder(t, time.UTC)
	entry := domain.Entry{
		URL:   "https://a.example/p?a=1&b=2",
		Title: "<script>alert(1)</script>Tom &amp; <b>Jerry</b>",
		Annotations: []domain.Annotation{
			{Text: "<img src=x onerror=alert(1)>clean"},
		},
	}

	record, err := b.Build(entry, domain.DefaultSettings(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", record.Title)
	assert.Contains(t, record.Body, `href="https://a.example/p?a=1&amp;b=2">Tom &amp; Jerry</a>`)
	assert.Contains(t, record.Body, "\n\nclean")
	assert.NotContains(t, record.Body, "script")
	assert.NotContains(t, record.Body, "onerror")
}

func TestBuild_TitleStoredAsPlainText(t *testing.T) {
	b := newTestBuilder(t, time.UTC)
	entry := domain.Entry{URL: "https://a.example/p", Title: "Tom & Jerry's <b>show</b>"}

	record, err := b.Build(entry, domain.DefaultSettings(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry's show", record.Title)
	assert.Contains(t, record.Body, `>Tom &amp; Jerry&#39;s show</a>`)
}

func TestBuild_RejectsScriptURL(t *testing.T) {
	b := newTestBuilder(t, time.UTC)

	_, err := b.Build(domain.Entry{URL: "javascript://x/%0aalert(document.cookie)", Title: "T"},
		domain.DefaultSettings(), time.Now())

	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestBuild_ConvertsToSiteTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	b := newTestBuilder(t, loc)
	entry := domain.Entry{
		URL:       "https://a.example/p",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	record, err := b.Build(entry, domain.DefaultSettings(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 01:00:00", record.CreatedAt.Format(time.DateTime))
	assert.Equal(t, loc, record.CreatedAt.Location())
}

func TestBuild_MissingCreatedAtUsesNow(t *testing.T) {
	b := newTestBuilder(t, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	record, err := b.Build(domain.Entry{URL: "https://a.example/p"}, domain.DefaultSettings(), now)

	require.NoError(t, err)
	assert.True(t, record.CreatedAt.Equal(now))
}

func TestBuild_DestinationFromSettings(t *testing.T) {
	b := newTestBuilder(t, time.UTC)
	entry := domain.Entry{URL: "https://a.example/p", Title: "x"}

	tests := []struct {
		name       string
		settings   domain.Settings
		wantType   string
		wantStatus string
		wantFormat string
	}{
		{
			name:       "link format on post",
			settings:   domain.Settings{PostType: "post", PostStatus: "published", PostFormat: "link"},
			wantType:   "post",
			wantStatus: "published",
			wantFormat: "link",
		},
		{
			name:       "format ignored on type without formats",
			settings:   domain.Settings{PostType: "bookmark", PostStatus: "private", PostFormat: "link"},
			wantType:   "bookmark",
			wantStatus: "private",
			wantFormat: "",
		},
		{
			name:       "empty settings fall back to defaults",
			settings:   domain.Settings{},
			wantType:   "post",
			wantStatus: "draft",
			wantFormat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := b.Build(entry, tt.settings, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, record.Type)
			assert.Equal(t, tt.wantStatus, record.Status)
			assert.Equal(t, tt.wantFormat, record.Format)
		})
	}
}

func TestBuild_InvalidURL(t *testing.T) {
	b := newTestBuilder(t, time.UTC)

	_, err := b.Build(domain.Entry{URL: "place:foo"}, domain.DefaultSettings(), time.Now())

	assert.ErrorIs(t, err, ErrInvalidURL)
}
