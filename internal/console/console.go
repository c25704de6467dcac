package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gai-kavia/kavia-console/internal/logger"
	"github.com/gai-kavia/kavia-console/pkg/apiclient"
)

// Call names one of the backend calls the console can make.
type Call string

const (
	CallHealth  Call = "health"
	CallInfo    Call = "info"
	CallWelcome Call = "welcome"
)

// Calls lists every call in display order.
var Calls = []Call{CallHealth, CallInfo, CallWelcome}

// ParseCall resolves a call name case-insensitively.
func ParseCall(s string) (Call, error) {
	c := Call(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Calls {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown call %q (want health, info or welcome)", s)
}

// ErrBusy is returned when a call is attempted while another is in flight.
var ErrBusy = errors.New("a call is already in flight")

// Theme is the light/dark preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// API is the backend surface the console drives.
type API interface {
	Health(ctx context.Context) (apiclient.Result, error)
	Info(ctx context.Context) (apiclient.Result, error)
	Welcome(ctx context.Context) (apiclient.Result, error)
	APIBase() string
	DocsURL() string
}

// Outcome is the displayable result of one call.
type Outcome struct {
	Call       Call
	Output     string
	Error      string
	StatusCode int
	Kind       string
	// Title is the HTML page title when the body was an HTML document.
	Title     string
	StartedAt time.Time
	Duration  time.Duration
}

// Failed reports whether the call ended in an error.
func (o Outcome) Failed() bool { return o.Error != "" }

// Console tracks one in-flight call and the last result or error.
type Console struct {
	api API
	log logger.Logger

	busy atomic.Bool

	mu     sync.RWMutex
	active Call
	output string
	errMsg string
	theme  Theme
}

// New builds a console over api.
func New(api API, log logger.Logger) *Console {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Console{api: api, log: log, theme: ThemeLight}
}

// Call runs which. Backend failures are captured in the outcome; the returned
// error is only for calls that never ran (ErrBusy, unknown call).
func (c *Console) Call(ctx context.Context, which Call) (Outcome, error) {
	fn, err := c.endpoint(which)
	if err != nil {
		return Outcome{}, err
	}
	if !c.busy.CompareAndSwap(false, true) {
		return Outcome{}, ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	c.active = which
	c.output = ""
	c.errMsg = ""
	c.mu.Unlock()

	out := Outcome{Call: which, StartedAt: time.Now()}
	res, callErr := fn(ctx)
	out.Duration = time.Since(out.StartedAt)

	if callErr != nil {
		out.Error = callErr.Error()
		var reqErr *apiclient.RequestError
		if errors.As(callErr, &reqErr) {
			out.StatusCode = reqErr.StatusCode
		}
		c.log.WarnObj("backend call failed", "call_error", map[string]any{
			"call":  string(which),
			"error": out.Error,
		})
	} else {
		out.Output = res.Display()
		out.StatusCode = res.StatusCode
		out.Kind = res.Kind.String()
		if res.Kind == apiclient.KindText {
			out.Title = htmlTitle(res.Text)
		}
		c.log.InfoObj("backend call completed", "call_result", map[string]any{
			"call":        string(which),
			"status":      out.StatusCode,
			"kind":        out.Kind,
			"fallback":    res.Fallback,
			"title":       out.Title,
			"duration_ms": out.Duration.Milliseconds(),
		})
	}

	c.mu.Lock()
	c.output = out.Output
	c.errMsg = out.Error
	c.mu.Unlock()

	return out, nil
}

func (c *Console) endpoint(which Call) (func(context.Context) (apiclient.Result, error), error) {
	switch which {
	case CallHealth:
		return c.api.Health, nil
	case CallInfo:
		return c.api.Info, nil
	case CallWelcome:
		return c.api.Welcome, nil
	default:
		return nil, fmt.Errorf("unknown call %q", which)
	}
}

// Loading reports whether a call is in flight.
func (c *Console) Loading() bool { return c.busy.Load() }

// Active returns the most recently started call.
func (c *Console) Active() Call {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Output returns the last successful output, empty after a failure.
func (c *Console) Output() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.output
}

// ErrorMessage returns the last error message, empty after a success.
func (c *Console) ErrorMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Theme returns the current theme.
func (c *Console) Theme() Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// ToggleTheme swaps light and dark and returns the new theme.
func (c *Console) ToggleTheme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.theme == ThemeLight {
		c.theme = ThemeDark
	} else {
		c.theme = ThemeLight
	}
	return c.theme
}

// APIBase returns the backend base URL for display.
func (c *Console) APIBase() string { return c.api.APIBase() }

// DocsURL returns the backend docs link for display.
func (c *Console) DocsURL() string { return c.api.DocsURL() }
