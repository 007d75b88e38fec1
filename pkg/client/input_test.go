package client

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/hirotachi/genie-cli-chat/pkg/chat"
)

func newTestInput() (*InputSection, *chat.Store) {
	store := chat.NewStore("")
	return NewInputSection(func(text string) { store.Append(text) }), store
}

func TestInputSection_Submit(t *testing.T) {
	t.Run("Trimmed text is appended once and the buffer is reset", func(t *testing.T) {
		input, store := newTestInput()
		input.View.SetText("  hello there \n", true)
		assert.True(t, input.Submit())

		messages := store.Messages()
		if assert.Len(t, messages, 1) {
			assert.Equal(t, "hello there", messages[0].Text)
			assert.True(t, messages[0].Self)
		}
		assert.Equal(t, "", input.View.GetText())
	})

	t.Run("Whitespace only input leaves the store unchanged", func(t *testing.T) {
		input, store := newTestInput()
		for _, text := range []string{"", "   ", "\n\t "} {
			input.View.SetText(text, true)
			assert.False(t, input.Submit())
		}
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Inner newlines survive", func(t *testing.T) {
		input, store := newTestInput()
		input.View.SetText("line one\nline two", true)
		input.Submit()
		assert.Equal(t, "line one\nline two", store.Messages()[0].Text)
	})
}

func TestInputSection_HandleKey(t *testing.T) {
	t.Run("Enter submits and is consumed", func(t *testing.T) {
		input, store := newTestInput()
		input.View.SetText("ping", true)
		out := input.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
		assert.Nil(t, out)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("Shift+Enter is passed through to the text area", func(t *testing.T) {
		input, store := newTestInput()
		input.View.SetText("ping", true)
		event := tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModShift)
		assert.Same(t, event, input.HandleKey(event))
		assert.Equal(t, 0, store.Len())
		assert.Equal(t, "ping", input.View.GetText())
	})

	t.Run("Tab moves focus to the verify panel", func(t *testing.T) {
		input, _ := newTestInput()
		var focused string
		input.Focus = func(view string) { focused = view }
		assert.Nil(t, input.HandleKey(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)))
		assert.Equal(t, VerifyView, focused)
	})

	t.Run("Other keys are left alone", func(t *testing.T) {
		input, _ := newTestInput()
		event := tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone)
		assert.Same(t, event, input.HandleKey(event))
	})
}
