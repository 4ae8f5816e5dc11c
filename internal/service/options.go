package service

import (
	"time"

	"wallabag_importer/internal/domain"
)

// FetchParamsTransformer rewrites the entries query before it is sent.
type FetchParamsTransformer func(params domain.FetchParams) domain.FetchParams

// PayloadTransformer rewrites a built record before it is persisted.
type PayloadTransformer func(record domain.Record, entry domain.Entry) domain.Record

// DuplicatePolicy decides whether the duplicate check runs for an entry.
type DuplicatePolicy func(entry domain.Entry) bool

type Option func(*ImportService)

func WithFetchParamsTransformer(fn FetchParamsTransformer) Option {
	return func(s *ImportService) {
		s.fetchParams = fn
	}
}

func WithPayloadTransformer(fn PayloadTransformer) Option {
	return func(s *ImportService) {
		s.payload = fn
	}
}

func WithDuplicatePolicy(fn DuplicatePolicy) Option {
	return func(s *ImportService) {
		s.checkDuplicates = fn
	}
}

func WithObserver(o RecordObserver) Option {
	return func(s *ImportService) {
		s.observers = append(s.observers, o)
	}
}

func WithMetrics(m MetricsCollector) Option {
	return func(s *ImportService) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ImportService) {
		s.now = now
	}
}

func checkAlways(domain.Entry) bool { return true }

func checkNever(domain.Entry) bool { return false }

type noopMetrics struct{}

func (noopMetrics) RecordRun(domain.RunOutcome, time.Duration) {}

func (noopMetrics) RecordEntries(int, int, int, int) {}
