package lutsynth

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the context of a pipeline is done before
// the table is complete. No partial table is ever returned with it.
var ErrCancelled = errors.New("lutsynth: cancelled")

var ErrUnsupportedSpace = errors.New("lutsynth: unsupported connection space")
var ErrChannels = errors.New("lutsynth: unsupported number of device channels")

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// check_cancel is polled once per grid plane
func check_cancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	return nil
}

// oracle_error marks failures caused by the context being done as
// cancellations.
func oracle_error(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return cancelled(err)
	}
	return err
}
