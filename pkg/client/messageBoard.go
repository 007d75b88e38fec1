package client

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/hirotachi/genie-cli-chat/pkg/chat"
)

// MessageBoard renders the transcript and keeps it scrolled to the latest message.
type MessageBoard struct {
	View  *tview.TextView
	Frame *tview.Frame
	queue func(func())
}

// NewMessageBoard builds the transcript view. queue runs a redraw on the UI goroutine;
// nil runs it inline.
func NewMessageBoard(title string, queue func(func())) *MessageBoard {
	messageView := tview.NewTextView()
	messageView.SetDynamicColors(true).SetScrollable(true).SetWrap(true)

	messageFrame := tview.NewFrame(messageView)
	messageFrame.SetTitle(fmt.Sprintf("[%s]", title)).SetBorder(true).SetTitleAlign(tview.AlignLeft)

	if queue == nil {
		queue = func(f func()) { f() }
	}
	return &MessageBoard{View: messageView, Frame: messageFrame, queue: queue}
}

// Bind renders the store now and again after every change.
func (board *MessageBoard) Bind(store *chat.Store) func() {
	board.Render(store.Messages())
	return store.Subscribe(func(messages []*chat.Message) {
		board.queue(func() { board.Render(messages) })
	})
}

func (board *MessageBoard) Render(messages []*chat.Message) {
	var b strings.Builder
	b.WriteString(board.WelcomeText())
	for _, message := range messages {
		b.WriteString(GenerateMessageLog(message))
	}
	board.View.SetText(strings.TrimRight(b.String(), "\n"))
	board.View.ScrollToEnd()
}

func (board *MessageBoard) WelcomeText() string {
	keys := []Option{
		{Prefix: "ENTER", Description: "Send the message."},
		{Prefix: "SHIFT+ENTER", Description: "New line."},
		{Prefix: "TAB", Description: "Move between the input and the verify controls."},
		{Prefix: "CTRL+C", Description: "Quit."},
	}
	return "[lightgrey::b]Welcome to Chat[::-]\n\n" + BuildOptionsList("Keys", keys) + "\n"
}

type Option struct {
	Action      string
	Description string
	Prefix      string
}

func BuildOptionsList(title string, optionsList []Option) string {
	result := fmt.Sprintf("[lightgrey::b]%s[::-] \n", title)
	for _, option := range optionsList {
		optionText := fmt.Sprintf("  [blue]%s[::-][white::b]%s[::-] [lightgrey]%s[::-]\n", option.Prefix, option.Action, option.Description)
		result += optionText
	}
	return result
}

// GenerateMessageLog formats one message block: author and time, then the indented body.
func GenerateMessageLog(message *chat.Message) string {
	info := fmt.Sprintf("[grey]%s[-:-:-]", message.Timestamp)

	authorName := fmt.Sprintf("[lightgrey]%s[-:-:-]", tview.Escape(message.Author))
	bodyColor := "lightgrey"
	if message.Self {
		authorName = fmt.Sprintf("[blue::b]%s[-:-:-]", tview.Escape(message.Author))
		bodyColor = "white"
	}

	lines := strings.Split(tview.Escape(message.Text), "\n")
	body := "  " + strings.Join(lines, "\n  ")
	return fmt.Sprintf("%s %s\n[%s]%s[-:-:-]\n\n", authorName, info, bodyColor, body)
}
