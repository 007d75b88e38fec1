// Package verify drives the one-shot Genie credential check: prompt for an optional
// token, call the verify endpoint once, show the outcome and hide it again after a delay.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirotachi/genie-cli-chat/pkg/utils"
)

const (
	Endpoint  = utils.VerifyPath
	ProbeText = "ping from UI"
	HideDelay = 15 * time.Second

	GenericError  = "Error calling verification endpoint; see console for details"
	PromptMessage = "Paste a Databricks token here (leave blank to use server env):"
)

var (
	ErrBusy   = errors.New("verification already in progress")
	ErrClosed = errors.New("verification control closed")
)

type State int

const (
	Idle State = iota
	Prompting
	Loading
	Showing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Prompting:
		return "prompting"
	case Loading:
		return "loading"
	case Showing:
		return "showing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Request is the body posted to the verify endpoint.
type Request struct {
	Token    string `json:"token,omitempty"`
	TestText string `json:"testText"`
}

// Transport performs the HTTP call. A non-nil error means no status was received.
type Transport interface {
	Verify(ctx context.Context, req Request) (status int, body []byte, err error)
}

// Prompter asks the user for an optional token. ok is false when the prompt was dismissed.
type Prompter interface {
	Prompt(ctx context.Context) (token string, ok bool)
}

// PrompterFunc adapts a plain function to Prompter.
type PrompterFunc func(ctx context.Context) (string, bool)

func (f PrompterFunc) Prompt(ctx context.Context) (string, bool) {
	return f(ctx)
}

// AfterFunc schedules f once after d and returns a func that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Snapshot is what a view needs to draw the control.
type Snapshot struct {
	State  State
	Result interface{}
	Error  string
}

func (s Snapshot) Loading() bool {
	return s.State == Loading
}

// CanVerify reports whether the trigger should be enabled.
func (s Snapshot) CanVerify() bool {
	return s.State != Loading && s.State != Prompting
}

// CanClear reports whether the clear action should be enabled.
func (s Snapshot) CanClear() bool {
	return !(s.State == Loading && s.Result == nil && s.Error == "")
}

// Pretty renders the result as two-space indented JSON, or "" when there is none.
func (s Snapshot) Pretty() string {
	if s.Result == nil {
		return ""
	}
	out, err := json.MarshalIndent(s.Result, "", "  ")
	if err != nil {
		return fmt.Sprint(s.Result)
	}
	return string(out)
}

type Option func(*Controller)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithHideDelay(d time.Duration) Option {
	return func(c *Controller) { c.hideDelay = d }
}

func WithAfterFunc(afterFunc AfterFunc) Option {
	return func(c *Controller) { c.afterFunc = afterFunc }
}

type Controller struct {
	transport Transport
	prompter  Prompter
	logger    zerolog.Logger
	hideDelay time.Duration
	afterFunc AfterFunc

	mu        sync.Mutex
	state     State
	result    interface{}
	errMsg    string
	stopHide  func() bool
	hideGen   uint64
	closed    bool
	listeners map[int]func(Snapshot)
	nextID    int

	// serializes listener delivery so views see snapshots in order
	notifyMu sync.Mutex
}

func NewController(transport Transport, prompter Prompter, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		prompter:  prompter,
		logger:    zerolog.Nop(),
		hideDelay: HideDelay,
		afterFunc: realAfterFunc,
		listeners: map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify runs one attempt to completion. It returns ErrBusy when an attempt is already
// prompting or loading; every other outcome is reported through the snapshot.
func (c *Controller) Verify(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == Prompting || c.state == Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = Prompting
	c.mu.Unlock()
	c.notify()

	token, ok := c.prompter.Prompt(ctx)
	if !ok {
		token = ""
	}

	c.mu.Lock()
	c.state = Loading
	c.result = nil
	c.errMsg = ""
	c.cancelHideLocked()
	c.mu.Unlock()
	c.notify()

	defer c.finish()

	req := Request{Token: strings.TrimSpace(token), TestText: ProbeText}
	status, body, err := c.transport.Verify(ctx, req)
	if err != nil {
		c.logger.Error().Err(err).Msg("calling verification endpoint")
		c.fail(GenericError)
		return nil
	}

	if status < 200 || status > 299 {
		c.fail(fmt.Sprintf("Verification failed: %d %s", status, body))
		return nil
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Int("status", status).Msg("decoding verification response")
		c.fail(GenericError)
		return nil
	}
	c.succeed(data)
	return nil
}

// Clear drops the shown outcome and the pending auto-hide.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.cancelHideLocked()
	c.result = nil
	c.errMsg = ""
	if c.state == Showing {
		c.state = Idle
	}
	c.mu.Unlock()
	c.notify()
}

// Close cancels the pending auto-hide and detaches every listener.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancelHideLocked()
	c.listeners = map[int]func(Snapshot){}
	c.mu.Unlock()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// HidePending reports whether an auto-hide timer is scheduled.
func (c *Controller) HidePending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopHide != nil
}

// Subscribe registers fn for every state change; the returned func removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) fail(message string) {
	c.mu.Lock()
	c.result = nil
	c.errMsg = message
	c.scheduleHideLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) succeed(data interface{}) {
	c.mu.Lock()
	c.result = data
	c.errMsg = ""
	c.scheduleHideLocked()
	c.mu.Unlock()
	c.notify()
}

// finish leaves Loading no matter how the attempt ended.
func (c *Controller) finish() {
	c.mu.Lock()
	if c.state == Loading {
		if c.result != nil || c.errMsg != "" {
			c.state = Showing
		} else {
			c.state = Idle
		}
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) scheduleHideLocked() {
	c.cancelHideLocked()
	if c.closed {
		return
	}
	gen := c.hideGen
	c.stopHide = c.afterFunc(c.hideDelay, func() {
		c.expire(gen)
	})
}

// cancelHideLocked stops the pending timer and invalidates any callback already in flight.
func (c *Controller) cancelHideLocked() {
	if c.stopHide != nil {
		c.stopHide()
		c.stopHide = nil
	}
	c.hideGen++
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.hideGen || c.stopHide == nil {
		c.mu.Unlock()
		return
	}
	c.stopHide = nil
	c.result = nil
	c.errMsg = ""
	if c.state == Showing {
		c.state = Idle
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, Result: c.result, Error: c.errMsg}
}

func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	snapshot := c.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}
