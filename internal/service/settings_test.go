package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"wallabag_importer/internal/domain"
	"wallabag_importer/internal/security"
	"wallabag_importer/internal/service/mocks"
)

type SettingsServiceTestSuite struct {
	suite.Suite
	ctrl  *gomock.Controller
	store *mocks.MockSettingsStore

	service *SettingsService
	logger  *slog.Logger
}

func (s *SettingsServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockSettingsStore(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.service = NewSettingsService(s.store, security.NewTextSanitizer(), domain.Overrides{}, []string{"post", "bookmark"}, s.logger)
}

func (s *SettingsServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSettingsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettingsServiceTestSuite))
}

func ptr(v string) *string {
	return &v
}

func (s *SettingsServiceTestSuite) expectSave(ctx context.Context) *domain.Settings {
	saved := &domain.Settings{}
	s.store.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, settings *domain.Settings) error {
			*saved = *settings
			return nil
		},
	)
	return saved
}

func (s *SettingsServiceTestSuite) TestGet_MasksSecrets() {
	ctx := context.Background()
	stored := domain.DefaultSettings()
	stored.ClientSecret = "def"
	stored.Pass = "pw"

	s.store.EXPECT().Get(ctx).Return(&stored, nil)

	view, err := s.service.Get(ctx)

	s.NoError(err)
	s.Equal(SecretMask, view.ClientSecret)
	s.Equal(SecretMask, view.Pass)
	s.Equal(domain.DefaultHost, view.Host)
	s.False(view.UserLocked)
	s.Equal([]string{"post", "bookmark"}, view.AllowedTypes)
}

func (s *SettingsServiceTestSuite) TestUpdate_AcceptsValidInput() {
	ctx := context.Background()
	lastRun := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := domain.DefaultSettings()
	stored.LastRun = &lastRun

	s.store.EXPECT().Get(ctx).Return(&stored, nil)
	saved := s.expectSave(ctx)

	_, fieldErrs, err := s.service.Update(ctx, SettingsInput{
		Host:         ptr("  wallabag.example.org/ "),
		ClientID:     ptr("abc"),
		ClientSecret: ptr("def"),
		User:         ptr("me"),
		Pass:         ptr("pw"),
		Tags:         ptr("go, web,  <b>reading</b>"),
		PostType:     ptr("bookmark"),
		PostStatus:   ptr("pending"),
		PostFormat:   ptr("link"),
	})

	s.NoError(err)
	s.Empty(fieldErrs)
	s.Equal("https://wallabag.example.org", saved.Host)
	s.Equal("abc", saved.ClientID)
	s.Equal("def", saved.ClientSecret)
	s.Equal("me", saved.User)
	s.Equal("pw", saved.Pass)
	s.Equal("go,web,reading", saved.Tags)
	s.Equal("bookmark", saved.PostType)
	s.Equal("pending", saved.PostStatus)
	s.Equal("link", saved.PostFormat)
	s.Equal(&lastRun, saved.LastRun)
}

func (s *SettingsServiceTestSuite) TestUpdate_RejectsUnknownChoices() {
	ctx := context.Background()
	stored := domain.DefaultSettings()

	s.store.EXPECT().Get(ctx).Return(&stored, nil)
	saved := s.expectSave(ctx)

	_, fieldErrs, err := s.service.Update(ctx, SettingsInput{
		PostType:   ptr("page"),
		PostStatus: ptr("trash"),
		PostFormat: ptr("carousel"),
	})

	s.NoError(err)
	s.Empty(fieldErrs)
	s.Equal("post", saved.PostType)
	s.Equal("draft", saved.PostStatus)
	s.Equal("standard", saved.PostFormat)
}

func (s *SettingsServiceTestSuite) TestUpdate_InvalidHostKeepsPrevious() {
	ctx := context.Background()
	stored := domain.DefaultSettings()
	stored.Host = "https://old.example"

	s.store.EXPECT().Get(ctx).Return(&stored, nil)
	saved := s.expectSave(ctx)

	_, fieldErrs, err := s.service.Update(ctx, SettingsInput{
		Host:     ptr("not a host"),
		ClientID: ptr("abc"),
	})

	s.NoError(err)
	s.Equal([]FieldError{{Field: "host", Message: "Please provide a valid URL."}}, fieldErrs)
	s.Equal("https://old.example", saved.Host)
	s.Equal("abc", saved.ClientID)
}

func (s *SettingsServiceTestSuite) TestUpdate_EmptyHostDisablesImports() {
	ctx := context.Background()
	stored := domain.DefaultSettings()

	s.store.EXPECT().Get(ctx).Return(&stored, nil)
	saved := s.expectSave(ctx)

	_, fieldErrs, err := s.service.Update(ctx, SettingsInput{Host: ptr("   ")})

	s.NoError(err)
	s.Empty(fieldErrs)
	s.Equal("", saved.Host)
}

func (s *SettingsServiceTestSuite) TestUpdate_KeepsSecretsOnEmptyOrMask() {
	ctx := context.Background()
	stored := domain.DefaultSettings()
	stored.ClientID = "abc"
	stored.ClientSecret = "def"
	stored.Pass = "pw"

	s.store.EXPECT().Get(ctx).Return(&stored, nil)
	saved := s.expectSave(ctx)

	_, _, err := s.service.Update(ctx, SettingsInput{
		ClientID:     ptr(""),
		ClientSecret: ptr(SecretMask),
		Pass:         ptr(SecretMask),
	})

	s.NoError(err)
	s.Equal("abc", saved.ClientID)
	s.Equal("def", saved.ClientSecret)
	s.Equal("pw", saved.Pass)
}

func (s *SettingsServiceTestSuite) TestUpdate_OverriddenCredentialsAreReadOnly() {
	ctx := context.Background()
	service := NewSettingsService(s.store, security.NewTextSanitizer(),
		domain.Overrides{User: "deploy-user", Pass: "deploy-pass"}, []string{"post"}, s.logger)
	stored := domain.DefaultSettings()

	s.store.EXPECT().Get(ctx).Return(&stored, nil)
	saved := s.expectSave(ctx)

	view, _, err := service.Update(ctx, SettingsInput{User: ptr("someone"), Pass: ptr("secret")})

	s.NoError(err)
	s.Equal("", saved.User)
	s.Equal("", saved.Pass)
	s.True(view.UserLocked)
	s.True(view.PassLocked)
	s.Equal("deploy-user", view.User)
	s.Equal(SecretMask, view.Pass)
}

func (s *SettingsServiceTestSuite) TestUpdate_StoreErrors() {
	ctx := context.Background()

	s.store.EXPECT().Get(ctx).Return(nil, errors.New("db down"))
	_, _, err := s.service.Update(ctx, SettingsInput{})
	s.ErrorContains(err, "load settings")

	stored := domain.DefaultSettings()
	s.store.EXPECT().Get(ctx).Return(&stored, nil)
	s.store.EXPECT().Save(ctx, gomock.Any()).Return(errors.New("db down"))
	_, _, err = s.service.Update(ctx, SettingsInput{})
	s.ErrorContains(err, "save settings")
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "https://app.wallabag.it/", want: "https://app.wallabag.it", wantOK: true},
		{in: "http://10.0.0.5:8080", want: "http://10.0.0.5:8080", wantOK: true},
		{in: "wallabag.example.org", want: "https://wallabag.example.org", wantOK: true},
		{in: "https://example.org/wallabag//", want: "https://example.org/wallabag", wantOK: true},
		{in: "", want: "", wantOK: true},
		{in: "HTTP://example.org", want: "http://example.org", wantOK: true},
		{in: "Https://example.org/", want: "https://example.org", wantOK: true},
		{in: "not a host", want: "", wantOK: false},
		{in: "https://:8080", want: "", wantOK: false},
		{in: "ftp://example.org", want: "", wantOK: false},
		{in: "javascript://example.org", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeHost(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NormalizeHost(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
