// Package notify implements the toast queue. Any component may push a
// message; each message removes itself once its duration has elapsed,
// counted from the moment it was appended.
package notify

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/models"
	"github.com/google/uuid"
)

// Timer is the part of *time.Timer the channel needs.
type Timer interface {
	Stop() bool
}

// afterFunc is a seam over time.AfterFunc for tests.
type afterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Channel is safe for concurrent use. Create one per process with NewChannel
// and hand it to the stores and the CLI.
type Channel struct {
	mu        sync.Mutex
	duration  time.Duration
	toasts    []models.Toast
	timers    map[string]Timer
	listeners map[int]func(models.Toast)
	nextID    int
	closed    bool

	now       func() time.Time
	afterFunc afterFunc
	newID     func() string
}

type Option func(*Channel)

// WithClock replaces time.Now and time.AfterFunc.
func WithClock(now func() time.Time, after func(d time.Duration, f func()) Timer) Option {
	return func(c *Channel) {
		c.now = now
		c.afterFunc = after
	}
}

// NewChannel creates a channel whose toasts live for d; d <= 0 selects
// models.DefaultToastDuration.
func NewChannel(d time.Duration, opts ...Option) *Channel {
	if d <= 0 {
		d = models.DefaultToastDuration
	}
	c := &Channel{
		duration:  d,
		timers:    make(map[string]Timer),
		listeners: make(map[int]func(models.Toast)),
		now:       time.Now,
		afterFunc: realAfterFunc,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Notify appends a toast with the default duration.
func (c *Channel) Notify(text string, isError bool) {
	c.NotifyFor(text, isError, c.duration)
}

func (c *Channel) Success(text string) { c.Notify(text, false) }

func (c *Channel) Error(text string) { c.Notify(text, true) }

// NotifyFor appends a toast that expires after d.
func (c *Channel) NotifyFor(text string, isError bool, d time.Duration) {
	if d <= 0 {
		d = c.duration
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	t := models.Toast{
		ID:        c.newID(),
		Text:      text,
		IsError:   isError,
		Duration:  d,
		CreatedAt: c.now(),
	}
	c.toasts = append(c.toasts, t)
	id := t.ID
	c.timers[id] = c.afterFunc(d, func() { c.expire(id) })

	listeners := make([]func(models.Toast), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
}

func (c *Channel) expire(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.timers, id)
	c.remove(id)
}

// remove drops the toast with id. Caller holds c.mu.
func (c *Channel) remove(id string) bool {
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// Dismiss removes a toast before it expires. It reports whether the toast
// was still present.
func (c *Channel) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tm, ok := c.timers[id]; ok {
		tm.Stop()
		delete(c.timers, id)
	}
	return c.remove(id)
}

// Active returns the live toasts, oldest first.
func (c *Channel) Active() []models.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Subscribe calls fn for every toast appended after the call. fn runs on the
// notifying goroutine and must not block.
func (c *Channel) Subscribe(fn func(models.Toast)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Close stops every pending timer and drops all toasts. Later notifications
// are ignored.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, tm := range c.timers {
		tm.Stop()
		delete(c.timers, id)
	}
	c.toasts = nil
	c.listeners = make(map[int]func(models.Toast))
	c.closed = true
}
