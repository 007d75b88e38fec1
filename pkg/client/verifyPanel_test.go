package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirotachi/genie-cli-chat/pkg/verify"
)

// uiLoop stands in for the tview event loop: queued updates run on the test goroutine.
type uiLoop chan func()

func (l uiLoop) queue(f func()) { l <- f }

func (l uiLoop) runUntil(t *testing.T, done func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !done() {
		select {
		case f := <-l:
			f()
		case <-deadline:
			t.Fatal("ui state never settled")
		}
	}
}

func newTestPanel(t *testing.T, handler http.HandlerFunc) (*VerifyPanel, uiLoop) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	prompter := verify.PrompterFunc(func(ctx context.Context) (string, bool) { return "", false })
	controller := verify.NewController(NewConnection(srv.URL), prompter)
	t.Cleanup(controller.Close)

	loop := make(uiLoop, 32)
	return NewVerifyPanel(context.Background(), controller, loop.queue, zerolog.Nop()), loop
}

func TestVerifyPanel(t *testing.T) {
	t.Run("Successful verify shows the pretty printed result", func(t *testing.T) {
		panel, loop := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		assert.Equal(t, "Verify Genie", panel.VerifyButton.GetLabel())

		panel.HandleVerify()
		loop.runUntil(t, func() bool { return panel.snapshot.State == verify.Showing })
		assert.Equal(t, "{\n  \"ok\": true\n}", panel.Output.GetText(true))
		assert.Equal(t, "Verify Genie", panel.VerifyButton.GetLabel())

		panel.HandleClear()
		loop.runUntil(t, func() bool { return panel.snapshot.State == verify.Idle })
		assert.Empty(t, panel.Output.GetText(true))
	})

	t.Run("Failed verify shows the status and body", func(t *testing.T) {
		panel, loop := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("server error"))
		})
		panel.HandleVerify()
		loop.runUntil(t, func() bool { return panel.snapshot.State == verify.Showing })
		assert.Equal(t, "Verification failed: 500 server error", panel.Output.GetText(true))
	})

	t.Run("Loading snapshot relabels the button", func(t *testing.T) {
		panel, _ := newTestPanel(t, func(w http.ResponseWriter, r *http.Request) {})
		panel.Render(verify.Snapshot{State: verify.Loading})
		assert.Equal(t, "Verifying...", panel.VerifyButton.GetLabel())
		require.False(t, panel.snapshot.CanVerify())
		require.False(t, panel.snapshot.CanClear())
	})
}
