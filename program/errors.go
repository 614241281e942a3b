package main

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks bad histogram or trace input. A lock that hits it
	// is rejected and the previous mode is kept.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtractionFailure marks an extractor or projector that could not
	// produce spike waveforms for the locked threshold.
	ErrExtractionFailure = errors.New("extraction failure")
	// ErrLoadFailure marks a trace that could not be loaded. It is fatal to
	// starting a session.
	ErrLoadFailure = errors.New("load failure")
)

// LoadError reports which file and channel the data bridge failed on.
type LoadError struct {
	Path    string
	Channel string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("load %s (channel %q): %v", e.Path, e.Channel, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoadFailure, e.Err} }

func loadErrorf(path, channel, format string, args ...any) *LoadError {
	return &LoadError{Path: path, Channel: channel, Err: fmt.Errorf(format, args...)}
}
