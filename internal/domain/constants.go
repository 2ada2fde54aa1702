package domain

import "time"

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout bounds the completion request when no timeout is configured
	DefaultHTTPClientTimeout = DefaultRequestTimeoutSecs * time.Second
	// SpinnerInterval is the frame delay of the progress spinner
	SpinnerInterval = 80 * time.Millisecond
)

// Scanner constants
const (
	// MaxScanDepth is how deep the repository walk descends below the working directory
	MaxScanDepth = 3
)

// Time formats
const (
	// HistoryTimestampFormat is how history entries are stamped in the prompt
	HistoryTimestampFormat = "2006-01-02 15:04:05"
)
