package client

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// InputSection is the composer: a multi-line field plus a send button.
type InputSection struct {
	View   *tview.TextArea
	Send   *tview.Button
	Layout *tview.Flex
	Focus  func(view string)
	onSend func(text string)
}

func NewInputSection(onSend func(text string)) *InputSection {
	inputView := tview.NewTextArea()
	inputView.SetPlaceholder("Type a message... (Enter to send, Shift+Enter for a new line)").
		SetPlaceholderStyle(tcell.StyleDefault.Foreground(tcell.ColorDeepSkyBlue).Background(tcell.ColorGrey))
	inputView.SetLabel("> ").SetLabelStyle(tcell.StyleDefault.Foreground(tcell.ColorDeepSkyBlue))
	inputView.SetTextStyle(tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorGrey))

	inputSection := &InputSection{View: inputView, onSend: onSend}
	inputView.SetInputCapture(inputSection.HandleKey)

	inputSection.Send = tview.NewButton("Send").SetSelectedFunc(func() {
		inputSection.Submit()
	})

	inputSection.Layout = tview.NewFlex().
		AddItem(inputView, 0, 1, true).
		AddItem(inputSection.Send, 8, 0, false)
	return inputSection
}

// Submit hands the trimmed buffer to onSend and empties it. Blank input is ignored.
func (in *InputSection) Submit() bool {
	text := strings.TrimSpace(in.View.GetText())
	if text == "" {
		return false
	}
	in.onSend(text)
	in.View.SetText("", true)
	return true
}

// HandleKey consumes Enter without Shift; everything else goes on to the text area.
func (in *InputSection) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEnter:
		if event.Modifiers()&tcell.ModShift != 0 {
			return event
		}
		in.Submit()
		return nil
	case tcell.KeyTab:
		if in.Focus != nil {
			in.Focus(VerifyView)
		}
		return nil
	}
	return event
}
