package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererFirstFrameShowsEveryStep(t *testing.T) {
	assert := assert.New(t)

	store := NewStateStore(testTask())
	var out bytes.Buffer

	r, err := NewRenderer(RendererConfig{Store: store, Out: &out, TaskName: "build"})
	require.NoError(t, err)

	r.Render()

	got := out.String()
	assert.Contains(got, `Executing "build"...`)
	for _, repo := range []string{"api", "web", "cli"} {
		assert.Contains(got, repo)
	}
	assert.Equal(3, strings.Count(got, "waiting..."))
	// A full first frame, no cursor repositioning yet.
	assert.NotContains(got, "\x1b[5A")
}

func TestRendererRepaintsOnlyChangedRows(t *testing.T) {
	assert := assert.New(t)

	store := NewStateStore(testTask())
	var out bytes.Buffer

	r, err := NewRenderer(RendererConfig{Store: store, Out: &out, TaskName: "build"})
	require.NoError(t, err)

	r.Render()
	out.Reset()

	require.NoError(t, store.MarkRunning(0))
	r.Render()

	got := out.String()
	// Frame is 5 lines: header, separator and three steps.
	assert.True(strings.HasPrefix(got, "\x1b[5A"))
	assert.Contains(got, "running...")
	// The unchanged rows are stepped over, not rewritten.
	assert.NotContains(got, "waiting...")
	assert.Equal(4, strings.Count(got, "\x1b[1B"))
}

func TestRendererStableFrameWritesNoRows(t *testing.T) {
	assert := assert.New(t)

	store := NewStateStore(testTask())
	var out bytes.Buffer

	r, err := NewRenderer(RendererConfig{Store: store, Out: &out, TaskName: "build"})
	require.NoError(t, err)

	r.Render()
	out.Reset()
	r.Render()

	got := out.String()
	assert.NotContains(got, "waiting...")
	assert.Equal(5, strings.Count(got, "\x1b[1B"))
}

func TestRendererLoopPaintsFinalFrame(t *testing.T) {
	assert := assert.New(t)

	store := NewStateStore(testTask())
	var out bytes.Buffer

	r, err := NewRenderer(RendererConfig{Store: store, Out: &out, TaskName: "build"})
	require.NoError(t, err)

	require.NoError(t, store.MarkSkipped(0))
	require.NoError(t, store.MarkSkipped(1))
	require.NoError(t, store.MarkSkipped(2))

	stop := make(chan struct{})
	close(stop)
	require.NoError(t, r.Loop(stop))

	assert.Equal(3, strings.Count(out.String(), "skipped."))
}
