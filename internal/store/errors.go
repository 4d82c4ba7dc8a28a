// Package store persists finished session records to one or more sinks.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"screening-datagen/pkg"
)

// Sink persists a record and reports where it went.
type Sink interface {
	Save(ctx context.Context, rec *pkg.SessionRecord) (string, error)
}

// SinkError wraps a sink failure with the sink and operation that failed.
type SinkError struct {
	Sink string
	Op   string
	Err  error
}

func (e *SinkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s sink: %v", e.Sink, e.Err)
	}
	return fmt.Sprintf("%s sink: %s: %v", e.Sink, e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

func wrapError(sink, op string, err error) error {
	if err == nil {
		return nil
	}
	return &SinkError{Sink: sink, Op: op, Err: err}
}

// Close closes every sink that holds a connection.
func Close(sinks ...Sink) error {
	var errs []error
	for _, s := range sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
