package availability

import (
	"context"
	"sync"
)

// Navigator is one calendar's month cursor over a shared Resolver. Only the
// most recently requested month may become the current view.
type Navigator struct {
	resolver *Resolver

	mu      sync.Mutex
	focus   Key
	seq     uint64
	current MonthView
}

func NewNavigator(resolver *Resolver, start Key) *Navigator {
	return &Navigator{resolver: resolver, focus: start}
}

func (n *Navigator) Focus() Key {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.focus
}

// Current returns the last view that was applied.
func (n *Navigator) Current() MonthView {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Show focuses key and loads it. Months that failed earlier are fetched
// again because failures are never cached.
func (n *Navigator) Show(ctx context.Context, key Key) MonthView {
	n.mu.Lock()
	n.seq++
	token := n.seq
	n.focus = key
	n.mu.Unlock()

	v := n.resolver.Load(ctx, key)

	n.mu.Lock()
	defer n.mu.Unlock()
	if token != n.seq {
		v.Stale = true
		return v
	}
	n.current = v
	return v
}

func (n *Navigator) NextMonth(ctx context.Context) MonthView {
	return n.Show(ctx, n.Focus().Next())
}

func (n *Navigator) PrevMonth(ctx context.Context) MonthView {
	return n.Show(ctx, n.Focus().Prev())
}

// Reload shows the focused month again, e.g. after a failed fetch.
func (n *Navigator) Reload(ctx context.Context) MonthView {
	return n.Show(ctx, n.Focus())
}

// SetService moves the cursor to the same month of another service.
func (n *Navigator) SetService(ctx context.Context, serviceID string) MonthView {
	key := n.Focus()
	key.ServiceID = serviceID
	return n.Show(ctx, key)
}
