package store

import (
	"context"
	"errors"
	"strings"

	"screening-datagen/pkg"
)

// Multi saves to every sink in order. A failing sink does not stop the
// others; the joined error is returned together with the locations that
// did succeed.
type Multi []Sink

func (m Multi) Save(ctx context.Context, rec *pkg.SessionRecord) (string, error) {
	var locs []string
	var errs []error
	for _, s := range m {
		loc, err := s.Save(ctx, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		locs = append(locs, loc)
	}
	return strings.Join(locs, ","), errors.Join(errs...)
}

// Close closes the sinks that hold connections.
func (m Multi) Close() error {
	return Close(m...)
}
