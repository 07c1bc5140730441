package planning

import (
	"sync"
	"time"
)

// Kind is the kind of a notification.
type Kind int

// Notification kinds.
const (
	KindSuccess Kind = iota
	KindError
)

// String returns "success" or "error".
func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

// Notification is a transient message shown to the user.
type Notification struct {
	Message string
	Kind    Kind
	Seq     uint64 // Increases with every Show; identifies this notification for Expire
}

// Stopper cancels a scheduled call.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d. time.AfterFunc is the production implementation.
type AfterFunc func(d time.Duration, f func()) Stopper

func realAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Relay holds at most one notification and clears it after a fixed delay.
// A new notification replaces the current one and restarts the delay.
// Relay is safe for concurrent use; the clearing timer runs on its own goroutine.
// Fields are ordered to minimize memory padding.
type Relay struct {
	after    AfterFunc
	timer    Stopper
	onChange func(Notification, bool)
	current  Notification
	mu       sync.Mutex
	delay    time.Duration
	visible  bool
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithAfterFunc replaces the timer used for auto-dismiss.
func WithAfterFunc(fn AfterFunc) RelayOption {
	return func(r *Relay) {
		r.after = fn
	}
}

// WithManualExpiry disables the internal timer. The owner must call Expire with the
// notification's Seq once Delay has elapsed, e.g. from a UI tick.
func WithManualExpiry() RelayOption {
	return func(r *Relay) {
		r.after = nil
	}
}

// WithOnChange registers fn to be called after every change. visible is false once cleared.
// fn is called without the relay lock held.
func WithOnChange(fn func(n Notification, visible bool)) RelayOption {
	return func(r *Relay) {
		r.onChange = fn
	}
}

// NewRelay returns a relay that clears notifications after delay.
// A non-positive delay falls back to three seconds.
func NewRelay(delay time.Duration, opts ...RelayOption) *Relay {
	if delay <= 0 {
		delay = 3 * time.Second
	}
	r := &Relay{after: realAfterFunc, delay: delay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Delay returns the auto-dismiss delay.
func (r *Relay) Delay() time.Duration {
	return r.delay
}

// Show replaces the current notification with message and restarts the dismiss delay.
func (r *Relay) Show(message string, kind Kind) Notification {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	n := Notification{Message: message, Kind: kind, Seq: r.current.Seq + 1}
	r.current = n
	r.visible = true
	if r.after != nil {
		seq := n.Seq
		r.timer = r.after(r.delay, func() { r.Expire(seq) })
	}
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(n, true)
	}
	return n
}

// Success shows a success notification.
func (r *Relay) Success(message string) Notification {
	return r.Show(message, KindSuccess)
}

// Error shows an error notification.
func (r *Relay) Error(message string) Notification {
	return r.Show(message, KindError)
}

// Current returns the visible notification, and false when there is none.
func (r *Relay) Current() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.visible
}

// Expire clears the notification identified by seq if it is still the visible one.
// Stale expirations of replaced notifications are ignored.
func (r *Relay) Expire(seq uint64) {
	r.mu.Lock()
	if !r.visible || r.current.Seq != seq {
		r.mu.Unlock()
		return
	}
	r.clearLocked()
}

// Clear removes the visible notification immediately.
func (r *Relay) Clear() {
	r.mu.Lock()
	if !r.visible {
		r.mu.Unlock()
		return
	}
	r.clearLocked()
}

// clearLocked must be called with r.mu held; it releases it.
func (r *Relay) clearLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.visible = false
	n := r.current
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(n, false)
	}
}
