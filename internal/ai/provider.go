package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnavailable = errors.New("ai backend unavailable")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are sampling knobs passed through to the backend; values are
// tuning parameters, not part of any contract.
type Options struct {
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

// IChatProvider is one non-streaming chat-completion backend. Chat returns
// the reply text or an error; it never retries on its own.
type IChatProvider interface {
	Name() string
	Chat(ctx context.Context, model string, messages []Message, opts Options) (string, error)
}

type ProviderFactory func(args interface{}) (IChatProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IChatProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

// NormalizeRole maps a stored-turn role onto the three roles the backends
// accept. Bot-tagged roles become assistant, anything unrecognized is
// treated as user input.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleSystem:
		return RoleSystem
	case RoleAssistant, "bot", "model", "ai":
		return RoleAssistant
	default:
		return RoleUser
	}
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
