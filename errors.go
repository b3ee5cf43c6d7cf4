package diagram

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound = errors.New("input file not found")
	ErrParse        = errors.New("malformed input")
	ErrEmptyInput   = errors.New("no generations common to all runs")
)

// ParseError describes a malformed input file. Line is 1-based and counts
// the header row; it is 0 when the problem is not tied to a line.
type ParseError struct {
	File       string
	Line       int
	Column     string
	Suggestion string
	Err        error
}

func (e *ParseError) Error() string {
	msg := e.File
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d", msg, e.Line)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s: column %q", msg, e.Column)
	}
	msg = fmt.Sprintf("%s: %v", msg, e.Err)
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, e.Suggestion)
	}
	return msg
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// StageError records which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
