package domain

import "errors"

var (
	// ErrInvalidRequest is returned before any computation when the request is malformed
	ErrInvalidRequest = errors.New("invalid performance request")

	// ErrBenchmarkUnavailable is returned when a requested benchmark has no data for the window
	ErrBenchmarkUnavailable = errors.New("benchmark unavailable")

	// ErrMissingBenchmarkForAttribution is returned when attribution is requested without a benchmark
	ErrMissingBenchmarkForAttribution = errors.New("attribution requires a benchmark")

	// ErrAttributionUnreconciled is returned when attribution effects do not sum to the excess return
	ErrAttributionUnreconciled = errors.New("attribution effects do not reconcile to excess return")

	// ErrValuationUnavailable is returned by valuation providers with no value on or before a date
	ErrValuationUnavailable = errors.New("portfolio valuation unavailable")
)
