// Package search owns the client-side filter state for job and company
// listings. A Controller accumulates field edits and dispatches at most one
// fetch per settled filter snapshot via a trailing debounce.
package search

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is the trailing debounce window after the last edit.
const DefaultQuietPeriod = 500 * time.Millisecond

// Filter is the ephemeral client-side filter snapshot. All fields default to
// empty, meaning no constraint.
type Filter struct {
	Query     string
	Location  string
	CompanyID string
}

// Dispatch receives a settled filter snapshot. It must not block; typically
// it hands the snapshot to a fetch.Fetcher.
type Dispatch func(Filter)

// Controller debounces filter edits. Every field change reschedules the
// pending dispatch; a quiet period after the last change lets the final
// snapshot through. Identical consecutive snapshots are dispatched once.
type Controller struct {
	mu             sync.Mutex
	filter         Filter
	quiet          time.Duration
	dispatch       Dispatch
	pending        *time.Timer
	started        bool
	closed         bool
	lastDispatched *Filter
}

// NewController returns a Controller with the given quiet period;
// non-positive values fall back to DefaultQuietPeriod.
func NewController(quiet time.Duration, dispatch Dispatch) *Controller {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Controller{quiet: quiet, dispatch: dispatch}
}

// Start marks the identity context as loaded and issues exactly one fetch
// for the initial snapshot. Edits made before Start are folded into that
// first dispatch. Calling Start again is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	snapshot := c.filter
	c.lastDispatched = &snapshot
	c.mu.Unlock()

	c.dispatch(snapshot)
}

// SetQuery updates the free-text search term.
func (c *Controller) SetQuery(q string) {
	c.update(func(f *Filter) { f.Query = q })
}

// SetLocation updates the location filter.
func (c *Controller) SetLocation(loc string) {
	c.update(func(f *Filter) { f.Location = loc })
}

// SetCompanyID updates the company filter.
func (c *Controller) SetCompanyID(id string) {
	c.update(func(f *Filter) { f.CompanyID = id })
}

// Clear resets all fields to empty. The reset is debounced like any other
// edit.
func (c *Controller) Clear() {
	c.update(func(f *Filter) { *f = Filter{} })
}

// Filter returns the current (possibly not yet dispatched) snapshot.
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Close cancels any pending dispatch. Further edits are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) update(mutate func(*Filter)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	mutate(&c.filter)

	if !c.started {
		// The initial dispatch on Start picks the edit up.
		return
	}

	// Trailing debounce: cancel the scheduled dispatch and start the quiet
	// period over from this edit.
	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = time.AfterFunc(c.quiet, c.fire)
}

// fire dispatches the settled snapshot unless it equals the previously
// dispatched one.
func (c *Controller) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	snapshot := c.filter
	if c.lastDispatched != nil && *c.lastDispatched == snapshot {
		c.mu.Unlock()
		return
	}
	c.lastDispatched = &snapshot
	c.mu.Unlock()

	c.dispatch(snapshot)
}
