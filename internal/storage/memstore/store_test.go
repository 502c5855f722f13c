package memstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/skylark/internal/core"
)

func TestGet_UnknownTokenIsEmptySession(t *testing.T) {
	s := New()

	sess, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)

	assert.Equal(t, "nope", sess.Token)
	assert.Empty(t, sess.Memory)
	assert.Nil(t, sess.LastParams)
}

func TestAppendTurns_PairsAccumulate(t *testing.T) {
	s := New()
	ctx := context.Background()

	const turns = 5
	for i := 0; i < turns; i++ {
		err := s.AppendTurns(ctx, "tok",
			core.Turn{Role: core.RoleUser, Content: fmt.Sprintf("q%d", i)},
			core.Turn{Role: core.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
		require.NoError(t, err)
	}

	sess, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, sess.Memory, 2*turns)

	for i := 0; i < turns; i++ {
		assert.Equal(t, core.RoleUser, sess.Memory[2*i].Role)
		assert.Equal(t, fmt.Sprintf("q%d", i), sess.Memory[2*i].Content)
		assert.Equal(t, core.RoleAssistant, sess.Memory[2*i+1].Role)
	}
}

func TestPut_DoesNotTouchMemory(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.AppendTurns(ctx, "tok",
		core.Turn{Role: core.RoleUser, Content: "hi"},
		core.Turn{Role: core.RoleAssistant, Content: "hello"},
	))

	err := s.Put(ctx, core.Session{
		Token:        "tok",
		LastDecision: core.RouteResearch,
		LastResponse: "done",
		LastParams:   &core.SearchParams{Origin: "DEL", Destination: "BOM"},
	})
	require.NoError(t, err)

	sess, err := s.Get(ctx, "tok")
	require.NoError(t, err)

	assert.Len(t, sess.Memory, 2)
	assert.Equal(t, core.RouteResearch, sess.LastDecision)
	assert.Equal(t, "done", sess.LastResponse)
	require.NotNil(t, sess.LastParams)
	assert.Equal(t, "BOM", sess.LastParams.Destination)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.AppendTurns(ctx, "tok", core.Turn{Role: core.RoleUser, Content: "hi"}))

	sess, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	sess.Memory[0].Content = "mutated"

	again, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Memory[0].Content)
}
