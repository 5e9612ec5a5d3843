package render

import "errors"

var (
	// ErrInvalidConfiguration wraps construction failures: bad column
	// counts, analysis sizes or unsupported glyph modes.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSourceUnavailable is reported when a tick fires before the
	// analysis graph exists. The frame is skipped.
	ErrSourceUnavailable = errors.New("audio source unavailable")

	// ErrClosed is returned by Attach after Close.
	ErrClosed = errors.New("controller closed")
)
