package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"wallabag_importer/internal/domain"
)

type Source interface {
	Authenticate(ctx context.Context, settings domain.Settings) (domain.Token, error)
	FetchEntries(ctx context.Context, host string, token domain.Token, params domain.FetchParams) ([]domain.Entry, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, settings *domain.Settings) error
	UpdateLastRun(ctx context.Context, lastRun time.Time) error
}

type RecordStore interface {
	ExistsBySourceURI(ctx context.Context, recordType, uri string) (bool, error)
	Create(ctx context.Context, record *domain.Record) (int64, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunLocker makes import runs mutually exclusive across processes.
type RunLocker interface {
	TryLock(ctx context.Context, name string) (release func(), acquired bool, err error)
}

// RecordObserver is notified after a record has been created.
type RecordObserver interface {
	RecordCreated(ctx context.Context, record *domain.Record, entry domain.Entry) error
}

type MetricsCollector interface {
	RecordRun(outcome domain.RunOutcome, duration time.Duration)
	RecordEntries(imported, skipped, invalid, failed int)
}
