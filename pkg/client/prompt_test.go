package client

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type promptHarness struct {
	app      *tview.Application
	pages    *tview.Pages
	screen   tcell.SimulationScreen
	prompter *ModalPrompter
	restored atomic.Int32
}

// newPromptHarness runs a real application on a simulation screen; it is stopped on cleanup.
func newPromptHarness(t *testing.T) *promptHarness {
	t.Helper()
	h := &promptHarness{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		screen: tcell.NewSimulationScreen("UTF-8"),
	}
	h.pages.AddPage("chat", tview.NewTextView(), true, true)
	h.app.SetScreen(h.screen).SetRoot(h.pages, true)
	h.prompter = NewModalPrompter(h.app, h.pages, func() { h.restored.Add(1) })

	stopped := make(chan error, 1)
	go func() { stopped <- h.app.Run() }()
	t.Cleanup(func() {
		h.app.Stop()
		select {
		case err := <-stopped:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("application did not stop")
		}
	})
	return h
}

// hasPrompt asks the UI goroutine, so it observes every update queued before it.
func (h *promptHarness) hasPrompt() bool {
	present := make(chan bool, 1)
	h.app.QueueUpdate(func() { present <- h.pages.HasPage(promptPage) })
	select {
	case p := <-present:
		return p
	case <-time.After(time.Second):
		return false
	}
}

type promptResult struct {
	token string
	ok    bool
}

func (h *promptHarness) start(t *testing.T, ctx context.Context) <-chan promptResult {
	t.Helper()
	results := make(chan promptResult, 1)
	go func() {
		token, ok := h.prompter.Prompt(ctx)
		results <- promptResult{token: token, ok: ok}
	}()
	require.Eventually(t, h.hasPrompt, 2*time.Second, 10*time.Millisecond, "prompt never shown")
	return results
}

func waitResult(t *testing.T, results <-chan promptResult) promptResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("prompt never answered")
		return promptResult{}
	}
}

func TestModalPrompter_Prompt(t *testing.T) {
	t.Run("OK returns the typed token and restores the chat", func(t *testing.T) {
		h := newPromptHarness(t)
		results := h.start(t, context.Background())

		for _, r := range "dapi-123" {
			h.screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
		}
		h.screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone) // field -> OK button
		h.screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone) // press OK

		got := waitResult(t, results)
		assert.True(t, got.ok)
		assert.Equal(t, "dapi-123", got.token)
		assert.False(t, h.hasPrompt())
		assert.Equal(t, int32(1), h.restored.Load())
	})

	t.Run("Escape dismisses the form without a token", func(t *testing.T) {
		h := newPromptHarness(t)
		results := h.start(t, context.Background())

		h.screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
		h.screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

		got := waitResult(t, results)
		assert.False(t, got.ok)
		assert.Empty(t, got.token)
		assert.False(t, h.hasPrompt())
		assert.Equal(t, int32(1), h.restored.Load())
	})

	t.Run("Cancelled context returns and removes the form", func(t *testing.T) {
		h := newPromptHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		results := h.start(t, ctx)

		cancel()

		got := waitResult(t, results)
		assert.False(t, got.ok)
		assert.Empty(t, got.token)
		assert.Eventually(t, func() bool { return !h.hasPrompt() }, 2*time.Second, 10*time.Millisecond)
		assert.Eventually(t, func() bool { return h.restored.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	})
}
