package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout dispatches call reports to all configured publishers.
type Fanout struct {
	publishers []Publisher
	log        Logger
}

// NewFanout builds a dispatcher that fans out events across publishers.
func NewFanout(pubs []Publisher, log Logger) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	return &Fanout{publishers: cp, log: ensureLogger(log)}
}

// Publish forwards the event to every registered publisher, stopping early
// if ctx is done. It returns the number of publishers that handled the event.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, p := range f.publishers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
			continue
		}
		successful++
	}

	f.log.DebugObj("call report fanned out", "fanout_result", map[string]any{
		"call":       evt.Call,
		"delivered":  successful,
		"publishers": len(f.publishers),
	})
	return successful, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.publishers {
		c, ok := p.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err))
		}
	}
	return errors.Join(errs...)
}
