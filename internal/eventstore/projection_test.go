package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	require.NoError(t, AppendJSON(ctx, store, "old", TypeBuildStarted, BuildStartedPayload{Mode: "static"}))
	require.NoError(t, AppendJSON(ctx, store, "old", TypeBuildCompleted, BuildCompletedPayload{Outcome: "failed", Error: "boom"}))

	require.NoError(t, AppendJSON(ctx, store, "new", TypeBuildStarted, BuildStartedPayload{
		Mode:    "server",
		Commit:  "abc",
		Plugins: []string{"actions"},
	}))
	require.NoError(t, AppendJSON(ctx, store, "new", TypeStageCompleted, StageCompletedPayload{Stage: "prepare", DurationMS: 3}))
	require.NoError(t, AppendJSON(ctx, store, "new", TypeBuildCompleted, BuildCompletedPayload{
		Outcome:    "success",
		DurationMS: 1500,
		Chunks:     map[string]int{"server": 2},
	}))

	require.NoError(t, AppendJSON(ctx, store, "running", TypeBuildStarted, BuildStartedPayload{Mode: "static"}))

	history, err := History(ctx, store, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)

	require.Equal(t, "running", history[0].BuildID)
	require.Equal(t, buildStatusRunning, history[0].Status)
	require.Nil(t, history[0].CompletedAt)

	latest := history[1]
	require.Equal(t, "new", latest.BuildID)
	require.Equal(t, "success", latest.Status)
	require.Equal(t, "server", latest.Mode)
	require.Equal(t, []string{"actions"}, latest.Plugins)
	require.Equal(t, 1500*time.Millisecond, latest.Duration)
	require.Equal(t, map[string]int{"server": 2}, latest.Chunks)
	require.Equal(t, []StageCompletedPayload{{Stage: "prepare", DurationMS: 3}}, latest.Stages)
	require.NotNil(t, latest.CompletedAt)
}

func TestSummarize_BadPayload(t *testing.T) {
	_, err := Summarize("x", []Event{&Record{Kind: TypeBuildStarted, Data: []byte("{")}})
	require.Error(t, err)
}
