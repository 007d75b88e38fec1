package client

import (
	"context"
	"sync"

	"github.com/rivo/tview"

	"github.com/hirotachi/genie-cli-chat/pkg/verify"
)

const promptPage = "token-prompt"

// ModalPrompter asks for the token in a modal form layered over the chat.
type ModalPrompter struct {
	app     *tview.Application
	pages   *tview.Pages
	restore func()
}

func NewModalPrompter(app *tview.Application, pages *tview.Pages, restore func()) *ModalPrompter {
	return &ModalPrompter{app: app, pages: pages, restore: restore}
}

type promptAnswer struct {
	token string
	ok    bool
}

// Prompt blocks the calling goroutine until the form is answered or ctx is done.
// It must not be called from the UI goroutine.
func (p *ModalPrompter) Prompt(ctx context.Context) (string, bool) {
	answers := make(chan promptAnswer, 1)
	var once sync.Once
	answer := func(a promptAnswer) {
		once.Do(func() {
			answers <- a
			p.pages.RemovePage(promptPage)
			if p.restore != nil {
				p.restore()
			}
		})
	}

	p.app.QueueUpdateDraw(func() {
		form := tview.NewForm()
		form.AddPasswordField("Token", "", 48, '*', nil)
		form.AddButton("OK", func() {
			token := form.GetFormItem(0).(*tview.InputField).GetText()
			answer(promptAnswer{token: token, ok: true})
		})
		form.AddButton("Cancel", func() {
			answer(promptAnswer{})
		})
		form.SetCancelFunc(func() {
			answer(promptAnswer{})
		})
		form.SetBorder(true).SetTitle(" " + verify.PromptMessage + " ")

		p.pages.AddPage(promptPage, centered(form, 72, 7), true, true)
		p.app.SetFocus(form)
	})

	select {
	case a := <-answers:
		return a.token, a.ok
	case <-ctx.Done():
		p.app.QueueUpdateDraw(func() { answer(promptAnswer{}) })
		return "", false
	}
}

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
