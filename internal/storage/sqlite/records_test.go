package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiscpa/legal-consultant/internal/model/chat"
	"github.com/alexiscpa/legal-consultant/internal/model/contract"
	"github.com/alexiscpa/legal-consultant/internal/model/scenario"
	"github.com/alexiscpa/legal-consultant/internal/storage"
)

func TestContractRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	c := &contract.Contract{
		ID:      uuid.NewString(),
		Title:   "Vendor agreement",
		Content: "contract body",
		Result: contract.Review{
			Summary:         "summary",
			Risks:           []string{"liability cap missing"},
			Compliance:      []string{"ok"},
			Recommendations: []string{"add cap"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateContract(ctx, c))

	contracts, err := s.ListContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, c.Title, contracts[0].Title)
	assert.Equal(t, c.Result, contracts[0].Result)

	require.NoError(t, s.DeleteContract(ctx, c.ID))
	assert.ErrorIs(t, s.DeleteContract(ctx, c.ID), storage.ErrNotFound)
}

func TestScenarioRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	sc := &scenario.Scenario{
		ID:          uuid.NewString(),
		Title:       "Overtime dispute",
		Category:    "labor",
		Description: "description",
		Advice:      "advice text",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateScenario(ctx, sc))

	scenarios, err := s.ListScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, sc.Advice, scenarios[0].Advice)

	require.NoError(t, s.DeleteScenario(ctx, sc.ID))
	assert.ErrorIs(t, s.DeleteScenario(ctx, sc.ID), storage.ErrNotFound)
}

func TestChatTurnsKeepChronologicalOrder(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	turns := []chat.Turn{
		{ID: uuid.NewString(), Role: chat.RoleUser, Text: "question", CreatedAt: base},
		{ID: uuid.NewString(), Role: chat.RoleModel, Text: "answer", CreatedAt: base.Add(time.Second),
			Sources: []chat.Source{{Title: "Labor Standards Act", URI: "https://law.example/lsa"}}},
	}
	for i := range turns {
		require.NoError(t, s.AppendTurn(ctx, &turns[i]))
	}

	stored, err := s.ListTurns(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "question", stored[0].Text)
	assert.Equal(t, "answer", stored[1].Text)
	require.Len(t, stored[1].Sources, 1)
	assert.Equal(t, "https://law.example/lsa", stored[1].Sources[0].URI)
	assert.Nil(t, stored[0].Sources)

	require.NoError(t, s.ClearTurns(ctx))
	stored, err = s.ListTurns(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestChatTurnsBreakTimestampTiesByInsertionOrder(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	at := time.Now().UTC().Truncate(time.Second)
	texts := []string{"first", "second", "third", "fourth"}
	for _, text := range texts {
		turn := chat.Turn{ID: uuid.NewString(), Role: chat.RoleUser, Text: text, CreatedAt: at}
		require.NoError(t, s.AppendTurn(ctx, &turn))
	}

	stored, err := s.ListTurns(ctx)
	require.NoError(t, err)
	require.Len(t, stored, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, stored[i].Text)
	}
}
