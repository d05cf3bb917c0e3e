package gemini

import (
	"context"
	"errors"
	"log/slog"
)

// producer pushes text fragments in emission order. push reports false when
// the consumer side is gone (context cancelled); producers must stop then.
type producer func(ctx context.Context, push func(string) bool) error

// startStream runs produce in a background goroutine and exposes its output
// as a one-shot fragment channel. The channel close is the stream's terminal
// state and is guaranteed under every outcome: normal exhaustion, a producer
// error, or cancellation. No fragment is emitted after close.
func startStream(ctx context.Context, logger *slog.Logger, produce producer) <-chan string {
	fragments := make(chan string)

	go func() {
		defer close(fragments)

		push := func(text string) bool {
			select {
			case fragments <- text:
				return true
			case <-ctx.Done():
				return false
			}
		}

		err := produce(ctx, push)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logger.Error("model stream terminated early", "err", err)
		}
	}()

	return fragments
}
