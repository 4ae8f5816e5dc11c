package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wallabag_importer/internal/config"
	"wallabag_importer/internal/domain"
)

// ImportService runs one import pass: authenticate, fetch the entries added
// since the last run, advance the cursor and create a record per new entry.
type ImportService struct {
	source    Source
	settings  SettingsStore
	records   RecordStore
	txManager TransactionManager
	locker    RunLocker
	builder   *RecordBuilder
	overrides domain.Overrides
	logger    *slog.Logger
	config    config.ImportConfig

	fetchParams     FetchParamsTransformer
	payload         PayloadTransformer
	checkDuplicates DuplicatePolicy
	observers       []RecordObserver
	metrics         MetricsCollector
	now             func() time.Time
}

func NewImportService(
	source Source,
	settings SettingsStore,
	records RecordStore,
	txManager TransactionManager,
	locker RunLocker,
	builder *RecordBuilder,
	overrides domain.Overrides,
	logger *slog.Logger,
	cfg config.ImportConfig,
	opts ...Option,
) *ImportService {
	s := &ImportService{
		source:          source,
		settings:        settings,
		records:         records,
		txManager:       txManager,
		locker:          locker,
		builder:         builder,
		overrides:       overrides,
		logger:          logger.With("job", cfg.JobName),
		config:          cfg,
		checkDuplicates: checkAlways,
		metrics:         noopMetrics{},
		now:             time.Now,
	}
	if cfg.AllowReimport {
		s.checkDuplicates = checkNever
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run performs one import. Misconfiguration and remote failures end the run
// with a non-completed outcome and a nil error; only local infrastructure
// failures are returned as errors.
func (s *ImportService) Run(ctx context.Context) (*domain.RunStats, error) {
	startTime := s.now()
	stats := &domain.RunStats{RunID: uuid.NewString()}
	logger := s.logger.With("run_id", stats.RunID)

	release, acquired, err := s.locker.TryLock(ctx, s.config.JobName)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !acquired {
		logger.Info("import already running, skipping")
		return s.finish(stats, domain.OutcomeLocked, "run in progress", startTime), nil
	}
	defer release()

	stored, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	settings := s.overrides.Apply(*stored)
	if !settings.Configured() {
		logger.Debug("import not configured")
		return s.finish(stats, domain.OutcomeNoop, "not configured", startTime), nil
	}

	token, err := s.source.Authenticate(ctx, settings)
	if err != nil {
		logger.Warn("authentication failed", "host", settings.Host, "error", err)
		return s.finish(stats, domain.OutcomeAborted, "authenticate", startTime), nil
	}

	params := domain.FetchParams{
		PerPage: s.config.PageSize,
		Tags:    settings.Tags,
		Since:   settings.LastRun,
	}
	if s.fetchParams != nil {
		params = s.fetchParams(params)
	}

	entries, err := s.source.FetchEntries(ctx, settings.Host, token, params)
	if err != nil {
		logger.Warn("fetch entries failed", "host", settings.Host, "error", err)
		return s.finish(stats, domain.OutcomeAborted, "fetch", startTime), nil
	}

	stats.Fetched = len(entries)
	logger.Info("fetched entries", "count", len(entries))

	// The cursor moves as soon as the fetch succeeded, whatever happens to the
	// individual entries below.
	if err := s.settings.UpdateLastRun(ctx, s.nextCursor(settings.LastRun)); err != nil {
		return nil, fmt.Errorf("update last run: %w", err)
	}

	for _, entry := range entries {
		s.importEntry(ctx, logger, entry, settings, stats)
	}

	s.metrics.RecordEntries(stats.Imported, stats.Skipped, stats.Invalid, stats.Failed)
	s.finish(stats, domain.OutcomeCompleted, "", startTime)

	logger.Info("import completed",
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"invalid", stats.Invalid,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *ImportService) importEntry(ctx context.Context, logger *slog.Logger, entry domain.Entry, settings domain.Settings, stats *domain.RunStats) {
	logger = logger.With("entry_id", entry.ID, "url", entry.URL)

	if err := ValidateEntryURL(entry.URL); err != nil {
		stats.Invalid++
		logger.Info("skipping entry, invalid url")
		return
	}

	if s.checkDuplicates(entry) {
		exists, err := s.records.ExistsBySourceURI(ctx, orDefault(settings.PostType, domain.DefaultType), entry.URL)
		if err != nil {
			stats.Failed++
			logger.Warn("duplicate check failed", "error", err)
			return
		}
		if exists {
			stats.Skipped++
			logger.Info("skipping entry, duplicate")
			return
		}
	}

	record, err := s.builder.Build(entry, settings, s.now())
	if err != nil {
		stats.Invalid++
		logger.Info("skipping entry", "error", err)
		return
	}

	if s.payload != nil {
		record = s.payload(record, entry)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		id, err := s.records.Create(txCtx, &record)
		if err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		record.ID = id
		return nil
	})
	if err != nil {
		stats.Failed++
		logger.Warn("failed to import entry", "error", err)
		return
	}

	stats.Imported++
	logger.Debug("imported entry", "record_id", record.ID)

	for _, o := range s.observers {
		if err := o.RecordCreated(ctx, &record, entry); err != nil {
			logger.Warn("record observer failed", "record_id", record.ID, "error", err)
		}
	}
}

// nextCursor returns the run time in whole seconds, nudged past the previous
// cursor so that it always moves forward.
func (s *ImportService) nextCursor(previous *time.Time) time.Time {
	next := s.now().Truncate(time.Second)
	if previous != nil && !next.After(*previous) {
		next = previous.Truncate(time.Second).Add(time.Second)
	}
	return next
}

func (s *ImportService) finish(stats *domain.RunStats, outcome domain.RunOutcome, reason string, startTime time.Time) *domain.RunStats {
	stats.Outcome = outcome
	stats.Reason = reason
	stats.Duration = s.now().Sub(startTime)
	s.metrics.RecordRun(outcome, stats.Duration)
	return stats
}
