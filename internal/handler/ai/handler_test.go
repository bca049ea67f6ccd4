package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiscpa/legal-consultant/internal/apperr"
	"github.com/alexiscpa/legal-consultant/internal/model/chat"
	aiservice "github.com/alexiscpa/legal-consultant/internal/service/ai"
)

type fakeUpstream struct {
	reply       *aiservice.Reply
	generateErr error

	streamChunks []aiservice.Chunk
	streamErr    error
}

func (f *fakeUpstream) Generate(_ context.Context, _ aiservice.Request) (*aiservice.Reply, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.reply, nil
}

func (f *fakeUpstream) Stream(_ context.Context, _ aiservice.Request) (aiservice.Stream, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &fakeStream{chunks: f.streamChunks}, nil
}

type fakeStream struct {
	chunks []aiservice.Chunk
	pos    int
}

func (s *fakeStream) Recv() (aiservice.Chunk, error) {
	if s.pos >= len(s.chunks) {
		return aiservice.Chunk{}, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *fakeStream) Close() {}

func testRouter(upstream aiservice.Upstream) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var gateway *aiservice.Gateway
	if upstream != nil {
		gateway = aiservice.NewGateway(log, upstream, nil)
	}

	r := chi.NewRouter()
	New(log, gateway).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestStatusReportsAvailability(t *testing.T) {
	for _, tc := range []struct {
		name     string
		upstream aiservice.Upstream
		want     bool
	}{
		{"configured", &fakeUpstream{}, true},
		{"unconfigured", nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ai/status", nil)
			resp := httptest.NewRecorder()
			testRouter(tc.upstream).ServeHTTP(resp, req)

			require.Equal(t, http.StatusOK, resp.Code)
			var body map[string]bool
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.want, body["available"])
		})
	}
}

func TestScenarioEndpoint(t *testing.T) {
	router := testRouter(&fakeUpstream{reply: &aiservice.Reply{Text: "advice text"}})

	resp := postJSON(t, router, "/ai/scenario", `{"scenario":"overtime dispute"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Text    string        `json:"text"`
		Sources []chat.Source `json:"sources"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "advice text", body.Text)
	assert.NotNil(t, body.Sources)
}

func TestScenarioRequiresText(t *testing.T) {
	router := testRouter(&fakeUpstream{reply: &aiservice.Reply{Text: "advice"}})

	resp := postJSON(t, router, "/ai/scenario", `{"scenario":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestScenarioUnavailableWithoutGateway(t *testing.T) {
	router := testRouter(nil)

	resp := postJSON(t, router, "/ai/scenario", `{"scenario":"anything"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestScenarioQuotaMapsTo429(t *testing.T) {
	router := testRouter(&fakeUpstream{
		generateErr: apperr.QuotaExceeded(assert.AnError),
	})

	resp := postJSON(t, router, "/ai/scenario", `{"scenario":"anything"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func TestContractEndpointReturnsReview(t *testing.T) {
	router := testRouter(&fakeUpstream{reply: &aiservice.Reply{
		Text: `{"summary":"ok","risks":["r1"],"compliance":[],"recommendations":["a1"]}`,
	}})

	resp := postJSON(t, router, "/ai/contract", `{"content":"contract body"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Summary         string   `json:"summary"`
		Risks           []string `json:"risks"`
		Compliance      []string `json:"compliance"`
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Summary)
	assert.Equal(t, []string{"r1"}, body.Risks)
	assert.NotNil(t, body.Compliance)
}

// readSSEFrames splits a recorded event-stream body into its data payloads.
func readSSEFrames(t *testing.T, body string) []string {
	t.Helper()
	var frames []string
	for _, line := range strings.Split(body, "\n") {
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			frames = append(frames, payload)
		}
	}
	return frames
}

func TestChatStreamsChunksThenSentinel(t *testing.T) {
	router := testRouter(&fakeUpstream{streamChunks: []aiservice.Chunk{
		{Text: "The notice "},
		{Text: "period is "},
		{Text: "ten days.", Sources: []chat.Source{{Title: "Labor Standards Act", URI: "https://law.example/lsa"}}},
	}})

	resp := postJSON(t, router, "/ai/chat", `{"message":"What is the notice period?"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	frames := readSSEFrames(t, resp.Body.String())
	require.GreaterOrEqual(t, len(frames), 2)
	require.Equal(t, doneSentinel, frames[len(frames)-1])

	var full strings.Builder
	var lastSources []chat.Source
	for _, frame := range frames[:len(frames)-1] {
		var event chatEvent
		require.NoError(t, json.Unmarshal([]byte(frame), &event))
		require.Empty(t, event.Error)
		full.WriteString(event.Text)
		if event.Sources != nil {
			lastSources = event.Sources
		}
	}

	// The concatenated chunks reproduce the complete reply.
	assert.Equal(t, "The notice period is ten days.", full.String())
	require.Len(t, lastSources, 1)
	assert.Equal(t, "https://law.example/lsa", lastSources[0].URI)
}

func TestChatRequiresMessage(t *testing.T) {
	router := testRouter(&fakeUpstream{})

	resp := postJSON(t, router, "/ai/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

// hangingUpstream emits one chunk, then blocks in Recv until the request
// context is canceled, mirroring a provider mid-generation.
type hangingUpstream struct {
	blocked chan struct{}
}

func (u *hangingUpstream) Generate(_ context.Context, _ aiservice.Request) (*aiservice.Reply, error) {
	return nil, io.ErrUnexpectedEOF
}

func (u *hangingUpstream) Stream(ctx context.Context, _ aiservice.Request) (aiservice.Stream, error) {
	return &hangingStream{ctx: ctx, blocked: u.blocked}, nil
}

type hangingStream struct {
	ctx     context.Context
	blocked chan struct{}
	sent    bool
}

func (s *hangingStream) Recv() (aiservice.Chunk, error) {
	if !s.sent {
		s.sent = true
		return aiservice.Chunk{Text: "partial answer"}, nil
	}
	close(s.blocked)
	<-s.ctx.Done()
	return aiservice.Chunk{}, apperr.Upstream("AI provider request failed", 0, s.ctx.Err())
}

func (s *hangingStream) Close() {}

func TestChatClientDisconnectMidStream(t *testing.T) {
	upstream := &hangingUpstream{blocked: make(chan struct{})}
	router := testRouter(upstream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/ai/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()

	served := make(chan struct{})
	go func() {
		router.ServeHTTP(resp, req)
		close(served)
	}()

	// Drop the client while Recv is blocked mid-generation.
	<-upstream.blocked
	cancel()
	<-served

	frames := readSSEFrames(t, resp.Body.String())
	require.Len(t, frames, 1)

	var event chatEvent
	require.NoError(t, json.Unmarshal([]byte(frames[0]), &event))
	assert.Equal(t, "partial answer", event.Text)

	// Nothing written after the disconnect: no error frame, no sentinel.
	for _, frame := range frames {
		assert.NotEqual(t, doneSentinel, frame)
		assert.NotContains(t, frame, `"error"`)
	}
}

func TestChatStreamOpenFailure(t *testing.T) {
	router := testRouter(&fakeUpstream{
		streamErr: apperr.Upstream("AI provider request failed", 503, assert.AnError),
	})

	resp := postJSON(t, router, "/ai/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
