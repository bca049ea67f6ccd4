// Package ai is the gateway between client requests and the generative-text
// provider: it shapes prompts, caches single-shot responses, and relays
// streamed replies incrementally.
package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/alexiscpa/legal-consultant/internal/model/chat"
	"github.com/alexiscpa/legal-consultant/internal/model/contract"
	"github.com/alexiscpa/legal-consultant/internal/model/scenario"
)

const (
	cacheKindScenario = "scenario"
	cacheKindContract = "contract"
)

// Gateway serves the three advisory operations behind one stable contract.
type Gateway struct {
	log      *slog.Logger
	upstream Upstream
	cache    *Cache
}

// NewGateway wires the gateway. cache may be nil to disable caching, which
// tests use for deterministic behavior.
func NewGateway(log *slog.Logger, upstream Upstream, cache *Cache) *Gateway {
	return &Gateway{log: log, upstream: upstream, cache: cache}
}

// ScenarioAdvice returns free-text guidance for a management situation, with
// citations de-duplicated by URI.
func (g *Gateway) ScenarioAdvice(ctx context.Context, scenarioText string) (*scenario.Advice, error) {
	var key string
	if g.cache != nil {
		key = g.cache.Key(cacheKindScenario, scenarioText)
		if cached, ok := g.cache.Get(key); ok {
			g.log.DebugContext(ctx, "scenario advice served from cache")
			return cached.(*scenario.Advice), nil
		}
	}

	reply, err := g.upstream.Generate(ctx, Request{
		System:  systemInstruction,
		Message: scenarioPrompt(scenarioText),
	})
	if err != nil {
		return nil, err
	}

	set := newSourceSet()
	set.add(reply.Sources)
	advice := &scenario.Advice{Text: reply.Text, Sources: set.list()}

	if g.cache != nil {
		g.cache.Set(key, advice)
	}
	return advice, nil
}

// ReviewContract returns a structured contract analysis. A reply that cannot
// be parsed as the expected JSON degrades to the raw text as summary with
// empty lists; that fallback is part of the contract, not an error.
func (g *Gateway) ReviewContract(ctx context.Context, content string) (*contract.Review, error) {
	var key string
	if g.cache != nil {
		key = g.cache.Key(cacheKindContract, content)
		if cached, ok := g.cache.Get(key); ok {
			g.log.DebugContext(ctx, "contract review served from cache")
			return cached.(*contract.Review), nil
		}
	}

	reply, err := g.upstream.Generate(ctx, Request{
		System:  systemInstruction,
		Message: contractPrompt(content),
	})
	if err != nil {
		return nil, err
	}

	review := parseReview(reply.Text)

	if g.cache != nil {
		g.cache.Set(key, review)
	}
	return review, nil
}

// parseReview extracts the JSON object from the model reply. Models often
// wrap JSON in prose or code fences, so the outermost braces are located
// before unmarshalling.
func parseReview(text string) *contract.Review {
	fallback := &contract.Review{
		Summary:         text,
		Risks:           []string{},
		Compliance:      []string{},
		Recommendations: []string{},
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fallback
	}

	var review contract.Review
	if err := json.Unmarshal([]byte(text[start:end+1]), &review); err != nil {
		return fallback
	}

	if review.Risks == nil {
		review.Risks = []string{}
	}
	if review.Compliance == nil {
		review.Compliance = []string{}
	}
	if review.Recommendations == nil {
		review.Recommendations = []string{}
	}
	return &review
}

// ChatTurn opens an incremental reply stream for a new message. Prior turns
// are replayed in their stored order; the style reminder rides along with
// every message so the persona holds across long conversations. Chat replies
// are never cached.
func (g *Gateway) ChatTurn(ctx context.Context, message string, history []chat.Turn) (Stream, error) {
	upstream, err := g.upstream.Stream(ctx, Request{
		System:  systemInstruction,
		History: history,
		Message: message + chatStyleReminder,
	})
	if err != nil {
		return nil, err
	}

	return &chatStream{inner: upstream, sources: newSourceSet()}, nil
}

// chatStream decorates the upstream stream with the running citation set:
// every chunk re-emits all sources seen so far, not a delta.
type chatStream struct {
	inner   Stream
	sources *sourceSet
}

func (s *chatStream) Recv() (Chunk, error) {
	chunk, err := s.inner.Recv()
	if err != nil {
		return Chunk{}, err
	}

	s.sources.add(chunk.Sources)
	return Chunk{Text: chunk.Text, Sources: s.sources.list()}, nil
}

func (s *chatStream) Close() {
	s.inner.Close()
}
