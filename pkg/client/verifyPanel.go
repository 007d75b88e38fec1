package client

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/hirotachi/genie-cli-chat/pkg/verify"
)

// VerifyPanel draws a verify.Controller: the two buttons and the latest outcome.
type VerifyPanel struct {
	VerifyButton *tview.Button
	ClearButton  *tview.Button
	Output       *tview.TextView
	Layout       *tview.Flex
	Focus        func(view string)

	controller *verify.Controller
	queue      func(func())
	logger     zerolog.Logger
	ctx        context.Context
	snapshot   verify.Snapshot
}

func NewVerifyPanel(ctx context.Context, controller *verify.Controller, queue func(func()), logger zerolog.Logger) *VerifyPanel {
	if queue == nil {
		queue = func(f func()) { f() }
	}
	panel := &VerifyPanel{
		controller: controller,
		queue:      queue,
		logger:     logger,
		ctx:        ctx,
		snapshot:   controller.Snapshot(),
	}

	panel.VerifyButton = tview.NewButton("Verify Genie").SetSelectedFunc(panel.HandleVerify)
	panel.ClearButton = tview.NewButton("Clear").SetSelectedFunc(panel.HandleClear)
	panel.VerifyButton.SetInputCapture(panel.navigate(ClearView))
	panel.ClearButton.SetInputCapture(panel.navigate(InputView))

	panel.Output = tview.NewTextView()
	panel.Output.SetDynamicColors(true).SetScrollable(true).SetWrap(true)

	buttons := tview.NewFlex().
		AddItem(panel.VerifyButton, 16, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(panel.ClearButton, 9, 0, false)
	panel.Layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(buttons, 1, 0, true).
		AddItem(panel.Output, 0, 1, false)

	controller.Subscribe(func(snapshot verify.Snapshot) {
		panel.queue(func() { panel.Render(snapshot) })
	})
	panel.Render(panel.snapshot)
	return panel
}

// HandleVerify starts an attempt off the UI goroutine; the prompt and the request both block.
func (panel *VerifyPanel) HandleVerify() {
	if !panel.snapshot.CanVerify() {
		return
	}
	go func() {
		if err := panel.controller.Verify(panel.ctx); err != nil {
			panel.logger.Debug().Err(err).Msg("verify ignored")
		}
	}()
}

func (panel *VerifyPanel) HandleClear() {
	if !panel.snapshot.CanClear() {
		return
	}
	panel.controller.Clear()
}

func (panel *VerifyPanel) Render(snapshot verify.Snapshot) {
	panel.snapshot = snapshot

	label := "Verify Genie"
	if snapshot.Loading() {
		label = "Verifying..."
	}
	panel.VerifyButton.SetLabel(label)
	panel.VerifyButton.SetStyle(buttonStyle(snapshot.CanVerify()))
	panel.ClearButton.SetStyle(buttonStyle(snapshot.CanClear()))

	switch {
	case snapshot.Error != "":
		panel.Output.SetText("[red]" + tview.Escape(snapshot.Error) + "[-]")
	case snapshot.Result != nil:
		panel.Output.SetText(tview.Escape(snapshot.Pretty()))
	default:
		panel.Output.SetText("")
	}
	panel.Output.ScrollToBeginning()
}

func (panel *VerifyPanel) navigate(next string) func(event *tcell.EventKey) *tcell.EventKey {
	return func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			panel.focus(next)
			return nil
		case tcell.KeyEscape:
			panel.focus(InputView)
			return nil
		}
		return event
	}
}

func (panel *VerifyPanel) focus(view string) {
	if panel.Focus != nil {
		panel.Focus(view)
	}
}

func buttonStyle(enabled bool) tcell.Style {
	if enabled {
		return tcell.StyleDefault.Background(tcell.ColorDeepSkyBlue).Foreground(tcell.ColorBlack)
	}
	return tcell.StyleDefault.Background(tcell.ColorDarkGrey).Foreground(tcell.ColorGrey)
}
