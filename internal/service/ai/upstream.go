package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/alexiscpa/legal-consultant/internal/apperr"
	"github.com/alexiscpa/legal-consultant/internal/config"
	"github.com/alexiscpa/legal-consultant/internal/model/chat"
)

// Request is one upstream invocation: a system instruction, optional prior
// turns replayed in order, and the triggering message.
type Request struct {
	System  string
	History []chat.Turn
	Message string
}

// Reply is a complete upstream response.
type Reply struct {
	Text    string
	Sources []chat.Source
}

// Chunk is one incremental piece of a streamed reply.
type Chunk struct {
	Text    string
	Sources []chat.Source
}

// Stream yields reply chunks in upstream order. Recv returns io.EOF when the
// stream is exhausted; Close releases the underlying resources.
type Stream interface {
	Recv() (Chunk, error)
	Close()
}

// Upstream is the capability wrapper over the generative-text provider.
type Upstream interface {
	Generate(ctx context.Context, req Request) (*Reply, error)
	Stream(ctx context.Context, req Request) (Stream, error)
}

// ModelUpstream implements Upstream on an eino prompt-template chain over the
// configured chat model.
type ModelUpstream struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewModelUpstream compiles the chain once; per-request data flows in through
// the template variables.
func NewModelUpstream(ctx context.Context, cfg config.AIConfig) (*ModelUpstream, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ModelUpstream{chain: runnable}, nil
}

// Generate runs a single-shot completion.
func (u *ModelUpstream) Generate(ctx context.Context, req Request) (*Reply, error) {
	msg, err := u.chain.Invoke(ctx, chainInput(req))
	if err != nil {
		return nil, classifyUpstreamError(err)
	}
	return &Reply{Text: msg.Content}, nil
}

// Stream runs an incremental completion.
func (u *ModelUpstream) Stream(ctx context.Context, req Request) (Stream, error) {
	sr, err := u.chain.Stream(ctx, chainInput(req))
	if err != nil {
		return nil, classifyUpstreamError(err)
	}
	return &modelStream{sr: sr}, nil
}

type modelStream struct {
	sr *schema.StreamReader[*schema.Message]
}

func (s *modelStream) Recv() (Chunk, error) {
	msg, err := s.sr.Recv()
	if err != nil {
		// io.EOF passes through untouched so callers see a clean end of stream.
		if errors.Is(err, io.EOF) {
			return Chunk{}, err
		}
		return Chunk{}, classifyUpstreamError(err)
	}
	if msg == nil {
		return Chunk{}, nil
	}
	return Chunk{Text: msg.Content}, nil
}

func (s *modelStream) Close() {
	s.sr.Close()
}

func chainInput(req Request) map[string]any {
	history := make([]*schema.Message, 0, len(req.History))
	for _, turn := range req.History {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleModel:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}

	return map[string]any{
		"system":  req.System,
		"history": history,
		"query":   req.Message,
	}
}

var statusCodePattern = regexp.MustCompile(`\b([45]\d{2})\b`)

// classifyUpstreamError maps provider failures into the gateway taxonomy.
// The provider surfaces HTTP status codes only inside error text, so rate
// limits are detected by code or wording.
func classifyUpstreamError(err error) error {
	text := err.Error()
	code := 0
	if m := statusCodePattern.FindString(text); m != "" {
		code, _ = strconv.Atoi(m)
	}

	lower := strings.ToLower(text)
	if code == 429 || strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit") {
		return apperr.QuotaExceeded(err)
	}

	return apperr.Upstream("AI provider request failed", code, err)
}
