// Package handler adapts the external speech framework contract for process
// entry: committed user utterances arrive as lines on a reader and spoken
// output leaves on a writer. The room/audio plumbing itself lives outside
// this repository; this boundary is what it plugs into.
package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Console bridges a line-oriented transcript source and a text speaker to
// the session. It implements usecase.Speaker.
type Console struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

type Option func(*Console)

// WithLogger sets the logger used for transcript read failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConsole creates a Console over the given reader and writer.
func NewConsole(in io.Reader, out io.Writer, opts ...Option) (*Console, error) {
	if in == nil {
		return nil, errors.New("handler: input reader must not be nil")
	}
	if out == nil {
		return nil, errors.New("handler: output writer must not be nil")
	}
	c := &Console{in: in, out: out, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Inputs returns the committed-utterance channel the session consumes.
// One line is one utterance; blank lines are skipped. The channel closes on
// EOF or when ctx ends, ending the session loop.
func (c *Console) Inputs(ctx context.Context) <-chan string {
	inputs := make(chan string)

	go func() {
		defer close(inputs)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case inputs <- line:
			case <-ctx.Done():
				return
			}
		}
		// A read error ends the session like EOF, but not silently.
		if err := scanner.Err(); err != nil {
			c.logger.Error("transcript read failed", "err", err)
		}
	}()

	return inputs
}

// SayDelta writes incremental response text as it streams.
func (c *Console) SayDelta(text string) {
	fmt.Fprint(c.out, text)
}

// Say commits a final message on its own line.
func (c *Console) Say(text string) {
	fmt.Fprintf(c.out, "\n%s\n", text)
}
