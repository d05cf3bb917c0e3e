package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoservice-agent/internal/domain"
)

const defaultTurnTimeout = 30 * time.Second

// ChatStreamer starts one streamed model turn for the given history. The
// returned channel delivers text fragments in production order and is closed
// exactly once when the stream reaches its terminal state; upstream failures
// surface only as a shorter (possibly empty) sequence.
type ChatStreamer interface {
	StartStream(ctx context.Context, history []domain.ChatMessage) <-chan string
}

// Speaker is the outbound half of the speech framework boundary. SayDelta
// forwards incremental text while a response is still streaming; Say commits
// a turn's final message.
type Speaker interface {
	SayDelta(text string)
	Say(text string)
}

// Session owns one customer interaction: the append-only conversation
// history, the at-most-one current vehicle (via Assistant), and the turn
// loop. A session processes turns strictly sequentially; a new turn does not
// begin until the prior one completes.
type Session struct {
	id          string
	history     []domain.ChatMessage
	assistant   *Assistant
	llm         ChatStreamer
	speaker     Speaker
	logger      *slog.Logger
	turnTimeout time.Duration
}

// SessionConfig carries the session's dependencies. Logger and TurnTimeout
// are optional.
type SessionConfig struct {
	LLM         ChatStreamer
	Assistant   *Assistant
	Speaker     Speaker
	Logger      *slog.Logger
	TurnTimeout time.Duration
}

// NewSession creates a session seeded with the system instructions and the
// welcome message.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.LLM == nil {
		return nil, errors.New("usecase: chat streamer must not be nil")
	}
	if cfg.Assistant == nil {
		return nil, errors.New("usecase: assistant must not be nil")
	}
	if cfg.Speaker == nil {
		return nil, errors.New("usecase: speaker must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}
	id := uuid.NewString()
	return &Session{
		id: id,
		history: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: Instructions},
			{Role: domain.RoleAssistant, Content: WelcomeMessage},
		},
		assistant:   cfg.Assistant,
		llm:         cfg.LLM,
		speaker:     cfg.Speaker,
		logger:      logger.With("session", id),
		turnTimeout: timeout,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// History returns a copy of the conversation history.
func (s *Session) History() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Run speaks the welcome message and then consumes committed utterances
// until the input channel closes or the context ends. Inputs are handled
// one at a time; the external collaborator pushes events onto the channel
// instead of registering callbacks.
func (s *Session) Run(ctx context.Context, inputs <-chan string) error {
	s.speaker.Say(WelcomeMessage)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case input, ok := <-inputs:
			if !ok {
				return nil
			}
			s.HandleUtterance(ctx, input)
		}
	}
}

// HandleUtterance drives one full conversation turn: append the input,
// stream the model's reply to the speaker while accumulating it, detect an
// embedded directive, execute at most one backend action, and commit the
// turn's final message. No failure inside a turn terminates the session.
func (s *Session) HandleUtterance(ctx context.Context, input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	s.append(domain.RoleUser, input)

	if _, ok := negativeUtterances[strings.ToLower(input)]; ok {
		s.append(domain.RoleAssistant, PlateFallbackMessage)
		s.speaker.Say(PlateFallbackMessage)
		return
	}

	if !s.assistant.HasVehicle() {
		s.append(domain.RoleSystem, LookupVINMessage)
	}

	ctx, cancel := context.WithTimeout(ctx, s.turnTimeout)
	defer cancel()

	full := s.streamResponse(ctx)
	if full == "" {
		// Upstream failure or empty reply; the stream already terminated.
		s.logger.Warn("model turn produced no output")
		s.speaker.Say(ApologyMessage)
		return
	}

	directive := ParseDirective(full)
	if directive == nil {
		s.append(domain.RoleAssistant, full)
		s.speaker.Say(full)
		return
	}

	result, err := s.assistant.Execute(ctx, *directive)
	if err != nil {
		s.logger.Error("action dispatch failed", "function", directive.Function, "err", err)
		s.speaker.Say(ApologyMessage)
		return
	}
	s.append(domain.RoleAssistant, result)
	s.speaker.Say(result)
}

// streamResponse consumes one fragment stream to its terminal state,
// fanning each fragment out to the speaker and the accumulation buffer.
// Returning only after the channel closes is what joins the producer side.
func (s *Session) streamResponse(ctx context.Context) string {
	var full strings.Builder
	for fragment := range s.llm.StartStream(ctx, s.history) {
		s.speaker.SayDelta(fragment)
		full.WriteString(fragment)
	}
	return full.String()
}

func (s *Session) append(role, content string) {
	s.history = append(s.history, domain.ChatMessage{Role: role, Content: content})
}
