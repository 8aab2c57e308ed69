package client

import (
	"context"
	"sync"
	"time"
)

// Status is the username-availability state the sign-up form renders.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusChecking  Status = "checking"
	StatusAvailable Status = "available"
	StatusTaken     Status = "taken"
	StatusError     Status = "error"
)

// DefaultDebounce is the quiescence period after the last keystroke before
// an availability check is issued.
const DefaultDebounce = 500 * time.Millisecond

// Update is delivered to the monitor's callback on every state change.
type Update struct {
	Name    string
	Status  Status
	Message string
}

// UsernameMonitor drives the availability state machine
// idle -> checking -> {available | taken | error}, re-entering checking on
// each new input after the debounce period. Every Input bumps a sequence
// number; a check result is applied only while its sequence is still the
// latest, so a superseded in-flight response can never overwrite a newer
// one (last request wins). Close cancels the pending timer and any
// in-flight request.
type UsernameMonitor struct {
	client   *Client
	debounce time.Duration
	onUpdate func(Update)

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	status Status
	closed bool
}

// NewUsernameMonitor creates a monitor. onUpdate may be nil; it is invoked
// outside the monitor's lock, so it may call back into the monitor.
func NewUsernameMonitor(client *Client, debounce time.Duration, onUpdate func(Update)) *UsernameMonitor {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &UsernameMonitor{
		client:   client,
		debounce: debounce,
		onUpdate: onUpdate,
		status:   StatusIdle,
	}
}

// Input feeds a keystroke's worth of state. An empty name resets to idle.
func (m *UsernameMonitor) Input(name string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.seq++
	seq := m.seq
	m.stopPendingLocked()

	if name == "" {
		m.status = StatusIdle
		cb := m.onUpdate
		m.mu.Unlock()
		if cb != nil {
			cb(Update{Name: name, Status: StatusIdle})
		}
		return
	}

	m.timer = time.AfterFunc(m.debounce, func() {
		m.check(name, seq)
	})
	m.mu.Unlock()
}

// Status returns the current availability state.
func (m *UsernameMonitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Reset returns the monitor to idle, discarding any pending or in-flight
// check. The form uses it after a successful submission.
func (m *UsernameMonitor) Reset() {
	m.mu.Lock()
	m.seq++
	m.stopPendingLocked()
	m.status = StatusIdle
	m.mu.Unlock()
}

// Close tears the monitor down. Subsequent Input calls are no-ops.
func (m *UsernameMonitor) Close() {
	m.mu.Lock()
	m.closed = true
	m.stopPendingLocked()
	m.mu.Unlock()
}

// stopPendingLocked cancels the debounce timer and any in-flight request.
// Callers must hold mu.
func (m *UsernameMonitor) stopPendingLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *UsernameMonitor) check(name string, seq uint64) {
	m.mu.Lock()
	if m.closed || seq != m.seq {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.status = StatusChecking
	cb := m.onUpdate
	m.mu.Unlock()

	if cb != nil {
		cb(Update{Name: name, Status: StatusChecking})
	}

	available, err := m.client.CheckUsername(ctx, name)
	cancel()

	m.mu.Lock()
	if m.closed || seq != m.seq {
		// Superseded while in flight; a newer request owns the state now.
		m.mu.Unlock()
		return
	}

	var status Status
	var message string
	switch {
	case err != nil:
		status, message = StatusError, err.Error()
	case available:
		status, message = StatusAvailable, "Username is available"
	default:
		status, message = StatusTaken, "Username is already taken"
	}
	m.status = status
	m.mu.Unlock()

	if cb != nil {
		cb(Update{Name: name, Status: status, Message: message})
	}
}
