package client

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirotachi/genie-cli-chat/pkg/chat"
)

func drawBoard(t *testing.T, board *MessageBoard, width, height int) []string {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(width, height)

	board.View.SetRect(0, 0, width, height)
	board.View.Draw(screen)
	screen.Show()

	cells, w, h := screen.GetContents()
	rows := make([]string, h)
	for y := 0; y < h; y++ {
		var b strings.Builder
		for x := 0; x < w; x++ {
			runes := cells[y*w+x].Runes
			if len(runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(runes[0])
		}
		rows[y] = strings.TrimRight(b.String(), " ")
	}
	return rows
}

func TestGenerateMessageLog(t *testing.T) {
	self := &chat.Message{Author: "You", Text: "hi [red]there\nsecond", Timestamp: "10:00:00", Self: true}
	other := &chat.Message{Author: "Genie", Text: "hello", Timestamp: "10:00:01"}

	selfLog := GenerateMessageLog(self)
	otherLog := GenerateMessageLog(other)

	assert.Contains(t, selfLog, "[blue::b]You")
	assert.Contains(t, otherLog, "[lightgrey]Genie")
	assert.Contains(t, selfLog, "  second")
	assert.NotContains(t, selfLog, "[red]there", "message text must not carry color tags")
}

func TestMessageBoard_ScrollsToLatest(t *testing.T) {
	store := chat.NewStore("")
	board := NewMessageBoard("test", nil)
	unbind := board.Bind(store)
	defer unbind()

	for i := 0; i < 20; i++ {
		store.Append(fmt.Sprintf("message number %d", i))
	}
	rows := drawBoard(t, board, 60, 8)
	screen := strings.Join(rows, "\n")
	assert.Contains(t, screen, "message number 19")
	assert.NotContains(t, screen, "Welcome to Chat")

	lines := strings.Count(board.View.GetText(true), "\n") + 1
	row, _ := board.View.GetScrollOffset()
	assert.Equal(t, lines-8, row)

	store.Append("the very last one")
	rows = drawBoard(t, board, 60, 8)
	assert.Contains(t, strings.Join(rows, "\n"), "the very last one")
}

func TestMessageBoard_RendersInOrder(t *testing.T) {
	store := chat.NewStore("")
	board := NewMessageBoard("test", nil)
	defer board.Bind(store)()

	store.Append("first")
	store.Append("second")
	text := board.View.GetText(true)
	assert.Less(t, strings.Index(text, "first"), strings.Index(text, "second"))
	assert.Contains(t, text, "Welcome to Chat")
}
