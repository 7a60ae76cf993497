package report

import "errors"

var (
	// ErrUnknownIndicator means no aggregator is registered under the
	// requested name.
	ErrUnknownIndicator = errors.New("indicator not found")

	// ErrUnknownSection means the requested analysis section does not
	// exist.
	ErrUnknownSection = errors.New("section not found")
)
