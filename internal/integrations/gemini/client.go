package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"autoservice-agent/internal/domain"
	"autoservice-agent/internal/integrations/paramstore"
)

const defaultModel = "gemini-1.5-flash"

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client is a streaming chat bridge against the Gemini API. It converts a
// conversation history into one streamed model turn per StartStream call.
//
// The underlying genai client is created lazily on the first stream: the API
// key is fetched from SSM once and reused for the lifetime of the process.
type Client struct {
	getter         Getter
	paramPrefix    string
	model          string
	defaultMessage string
	logger         *slog.Logger

	clientOnce  sync.Once
	genaiClient *genai.Client
	clientErr   error
}

type Option func(*Client)

// WithModel overrides the default Gemini model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

// WithDefaultMessage sets the outbound message substituted when StartStream
// is called with an empty history.
func WithDefaultMessage(msg string) Option {
	return func(c *Client) {
		c.defaultMessage = msg
	}
}

// WithLogger sets the logger used for upstream failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Client backed by the given paramstore.Getter for
// API key retrieval.
func NewClient(ps Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("gemini: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("gemini: parameter prefix must not be empty")
	}
	c := &Client{
		getter:         ps,
		paramPrefix:    paramPrefix,
		model:          defaultModel,
		defaultMessage: "Hello.",
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StartStream submits the history to the model and returns the reply as an
// ordered sequence of text fragments. The returned channel is one-shot and
// is always closed exactly once: on stream exhaustion, on an empty upstream
// reply, on an upstream failure, or on context cancellation. Upstream errors
// are logged and converted into early termination; they never reach the
// consumer.
func (c *Client) StartStream(ctx context.Context, history []domain.ChatMessage) <-chan string {
	return startStream(ctx, c.logger, func(ctx context.Context, push func(string) bool) error {
		client, err := c.resolveClient(ctx)
		if err != nil {
			return err
		}

		prior, last := splitHistory(history, c.defaultMessage)
		chat, err := client.Chats.Create(ctx, c.model, nil, prior)
		if err != nil {
			return fmt.Errorf("create chat session: %w", err)
		}

		for resp, err := range chat.SendMessageStream(ctx, genai.Part{Text: last}) {
			if err != nil {
				return fmt.Errorf("receive chunk: %w", err)
			}
			for _, text := range fragmentTexts(resp) {
				if !push(text) {
					return ctx.Err()
				}
			}
		}
		return nil
	})
}

// resolveClient creates the genai client on the first call and returns the
// cached result on every subsequent call within the same process lifetime.
func (c *Client) resolveClient(ctx context.Context) (*genai.Client, error) {
	c.clientOnce.Do(func() {
		apiKey, err := fetchAPIKeyFromParamStore(ctx, c.getter, c.tokenParameterName())
		if err != nil {
			c.clientErr = err
			return
		}
		c.genaiClient, c.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return c.genaiClient, c.clientErr
}

func (c *Client) tokenParameterName() string {
	return paramstore.Join(c.paramPrefix, "gemini-api-token")
}

// splitHistory maps the conversation history onto the Gemini turn format:
// every message but the last becomes session history ("assistant" maps to
// the model role, everything else to the user role) and the last message is
// the new outbound turn. An empty history substitutes the fallback message.
func splitHistory(history []domain.ChatMessage, fallback string) ([]*genai.Content, string) {
	if len(history) == 0 {
		return nil, fallback
	}
	prior := make([]*genai.Content, 0, len(history)-1)
	for _, msg := range history[:len(history)-1] {
		prior = append(prior, genai.NewContentFromText(msg.Content, toGeminiRole(msg.Role)))
	}
	return prior, history[len(history)-1].Content
}

func toGeminiRole(role string) genai.Role {
	if role == domain.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// fragmentTexts extracts the text deltas from one streamed response chunk.
func fragmentTexts(resp *genai.GenerateContentResponse) []string {
	if resp == nil {
		return nil
	}
	var texts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			texts = append(texts, part.Text)
		}
	}
	return texts
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("gemini: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("gemini: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("gemini: API token is empty")
	}
	return tp.Token, nil
}
