package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"wallabag_importer/internal/domain"
	"wallabag_importer/internal/security"
)

// SecretMask replaces stored secrets in settings returned to the admin
// surface. Submitting it back leaves the stored value alone.
const SecretMask = "********"

const msgInvalidURL = "Please provide a valid URL."

// SettingsInput is a settings form submission. Nil fields were not submitted.
type SettingsInput struct {
	Host         *string `json:"host"`
	ClientID     *string `json:"client_id"`
	ClientSecret *string `json:"client_secret"`
	User         *string `json:"user"`
	Pass         *string `json:"pass"`
	Tags         *string `json:"tags"`
	PostType     *string `json:"post_type"`
	PostStatus   *string `json:"post_status"`
	PostFormat   *string `json:"post_format"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SettingsView is what the admin surface shows.
type SettingsView struct {
	domain.Settings
	UserLocked   bool     `json:"user_locked"`
	PassLocked   bool     `json:"pass_locked"`
	AllowedTypes []string `json:"allowed_types"`
	Statuses     []string `json:"statuses"`
	Formats      []string `json:"formats"`
}

type SettingsService struct {
	store        SettingsStore
	sanitizer    *security.TextSanitizer
	overrides    domain.Overrides
	allowedTypes []string
	logger       *slog.Logger
}

func NewSettingsService(
	store SettingsStore,
	sanitizer *security.TextSanitizer,
	overrides domain.Overrides,
	allowedTypes []string,
	logger *slog.Logger,
) *SettingsService {
	return &SettingsService{
		store:        store,
		sanitizer:    sanitizer,
		overrides:    overrides,
		allowedTypes: allowedTypes,
		logger:       logger.With("component", "settings"),
	}
}

func (s *SettingsService) Get(ctx context.Context) (*SettingsView, error) {
	settings, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s.view(*settings), nil
}

// Update merges the submission into the stored settings and saves them.
// Invalid fields keep their previous value and are reported back; the valid
// ones are saved regardless.
func (s *SettingsService) Update(ctx context.Context, in SettingsInput) (*SettingsView, []FieldError, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	next, fieldErrs := s.merge(*current, in)

	if err := s.store.Save(ctx, &next); err != nil {
		return nil, nil, fmt.Errorf("save settings: %w", err)
	}

	s.logger.Info("settings updated", "host", next.Host, "invalid_fields", len(fieldErrs))

	return s.view(next), fieldErrs, nil
}

func (s *SettingsService) merge(settings domain.Settings, in SettingsInput) (domain.Settings, []FieldError) {
	var fieldErrs []FieldError

	if v := deref(in.PostType); v != "" && domain.Contains(s.allowedTypes, v) {
		settings.PostType = v
	}
	if v := deref(in.PostStatus); v != "" && domain.Contains(domain.Statuses, v) {
		settings.PostStatus = v
	}
	if v := deref(in.PostFormat); v != "" && domain.Contains(domain.Formats, v) {
		settings.PostFormat = v
	}

	if v := deref(in.ClientID); v != "" {
		settings.ClientID = v
	}
	if v := deref(in.ClientSecret); v != "" && v != SecretMask {
		settings.ClientSecret = v
	}

	if in.User != nil && s.overrides.User == "" {
		settings.User = *in.User
	}
	if in.Pass != nil && *in.Pass != SecretMask && s.overrides.Pass == "" {
		settings.Pass = *in.Pass
	}

	if in.Tags != nil {
		settings.Tags = strings.ReplaceAll(s.sanitizer.Plain(*in.Tags), ", ", ",")
	}

	if in.Host != nil {
		host, ok := NormalizeHost(*in.Host)
		if ok {
			settings.Host = host
		} else {
			fieldErrs = append(fieldErrs, FieldError{Field: "host", Message: msgInvalidURL})
		}
	}

	return settings, fieldErrs
}

func (s *SettingsService) view(settings domain.Settings) *SettingsView {
	settings = s.overrides.Apply(settings)
	if settings.ClientSecret != "" {
		settings.ClientSecret = SecretMask
	}
	if settings.Pass != "" {
		settings.Pass = SecretMask
	}

	return &SettingsView{
		Settings:     settings,
		UserLocked:   s.overrides.User != "",
		PassLocked:   s.overrides.Pass != "",
		AllowedTypes: s.allowedTypes,
		Statuses:     domain.Statuses,
		Formats:      domain.Formats,
	}
}

// NormalizeHost cleans an instance URL. An empty value is valid and disables
// imports; a missing scheme defaults to https. Only http and https are accepted.
func NormalizeHost(raw string) (string, bool) {
	host := strings.TrimRight(strings.TrimSpace(raw), "/")
	if host == "" {
		return "", true
	}

	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	u, err := url.Parse(host)
	if err != nil || !isWebScheme(u.Scheme) || u.Hostname() == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)

	return strings.TrimRight(u.String(), "/"), true
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
