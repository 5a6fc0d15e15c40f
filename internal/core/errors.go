package core

import "errors"

var (
	// ErrSourceUnavailable is returned when a feed, search backend or text generator cannot be reached
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedGeneration is returned when generated text does not contain the expected structure
	ErrMalformedGeneration = errors.New("malformed generation")

	// ErrStageFailure is returned when a pipeline stage fails for a single headline
	ErrStageFailure = errors.New("stage failure")

	// ErrConfiguration is returned when required settings are missing at startup
	ErrConfiguration = errors.New("configuration error")

	// ErrCacheIO is returned when the daily report archive cannot be read or written
	ErrCacheIO = errors.New("cache i/o error")
)
