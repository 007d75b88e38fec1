package client

import (
	"context"
	"time"

	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/hirotachi/genie-cli-chat/pkg/chat"
	"github.com/hirotachi/genie-cli-chat/pkg/verify"
)

const (
	MessageView = "messages"
	InputView   = "input"
	VerifyView  = "verify"
	ClearView   = "clear"

	mainPage = "chat"

	WelcomeMessage = "Welcome to the Data Query Bot!"
	assistantName  = "Genie"
)

type Options struct {
	ServerURL string
	Author    string
	Title     string
	Logger    zerolog.Logger
}

// ChatApp wires the store, transcript, composer and verify control into one screen.
type ChatApp struct {
	App          *tview.Application
	Pages        *tview.Pages
	Store        *chat.Store
	MessageBoard *MessageBoard
	Input        *InputSection
	Verify       *VerifyPanel
	Controller   *verify.Controller

	cancel context.CancelFunc
	unbind func()
}

func NewChatApp(opts Options) *ChatApp {
	if opts.Title == "" {
		opts.Title = "Basic Chat"
	}
	ctx, cancel := context.WithCancel(context.Background())

	app := tview.NewApplication()
	queue := func(f func()) { app.QueueUpdateDraw(f) }
	pages := tview.NewPages()

	store := chat.NewStore(opts.Author)
	store.AppendMessage(chat.NewMessage(assistantName, WelcomeMessage, time.Now(), false))

	chatApp := &ChatApp{App: app, Pages: pages, Store: store, cancel: cancel}

	prompter := NewModalPrompter(app, pages, func() { chatApp.Focus(InputView) })
	chatApp.Controller = verify.NewController(NewConnection(opts.ServerURL), prompter, verify.WithLogger(opts.Logger))

	chatApp.MessageBoard = NewMessageBoard(opts.Title, queue)
	chatApp.unbind = chatApp.MessageBoard.Bind(store)

	chatApp.Input = NewInputSection(func(text string) {
		message := store.Append(text)
		opts.Logger.Debug().Str("id", message.ID).Msg("message appended")
	})
	chatApp.Input.Focus = chatApp.Focus

	chatApp.Verify = NewVerifyPanel(ctx, chatApp.Controller, queue, opts.Logger)
	chatApp.Verify.Focus = chatApp.Focus

	title := tview.NewTextView().SetDynamicColors(true).
		SetText("[lightgrey::b]" + tview.Escape(opts.Title) + "[::-]")
	header := tview.NewFlex().
		AddItem(title, 0, 1, false).
		AddItem(chatApp.Verify.Layout, 0, 2, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 8, 0, false).
		AddItem(chatApp.MessageBoard.Frame, 0, 1, false).
		AddItem(chatApp.Input.Layout, 3, 0, true)

	pages.AddPage(mainPage, layout, true, true)
	app.SetRoot(pages, true).SetFocus(chatApp.Input.View)
	return chatApp
}

func (c *ChatApp) Focus(view string) {
	switch view {
	case InputView:
		c.App.SetFocus(c.Input.View)
	case VerifyView:
		c.App.SetFocus(c.Verify.VerifyButton)
	case ClearView:
		c.App.SetFocus(c.Verify.ClearButton)
	case MessageView:
		c.App.SetFocus(c.MessageBoard.View)
	}
}

// Run blocks until the UI exits, then releases the timer and listeners.
func (c *ChatApp) Run() error {
	defer c.Close()
	return c.App.Run()
}

func (c *ChatApp) Close() {
	c.cancel()
	c.unbind()
	c.Controller.Close()
}
