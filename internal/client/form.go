package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrSubmitInFlight is returned while a previous submission is pending.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	// ErrNameTaken is returned when submit is attempted while the monitor
	// reports the username as taken.
	ErrNameTaken = errors.New("username is already taken")
)

// SubmitResult is the outcome of a successful registration.
type SubmitResult struct {
	Message string
	// RedirectPath is the verification-entry view keyed by the registered
	// name, e.g. /verify/alice1.
	RedirectPath string
}

// SignUpForm models the sign-up form: field state, the debounced username
// monitor, and the submit rules (submit is refused while the username is
// taken or a submission is in flight). On success the fields are cleared and
// the monitor resets to idle; on failure the state is left intact for
// correction.
type SignUpForm struct {
	client  *Client
	Monitor *UsernameMonitor

	mu       sync.Mutex
	name     string
	email    string
	password string

	submitting atomic.Bool
}

func NewSignUpForm(client *Client, debounce time.Duration, onUpdate func(Update)) *SignUpForm {
	return &SignUpForm{
		client:  client,
		Monitor: NewUsernameMonitor(client, debounce, onUpdate),
	}
}

// SetName updates the username field and feeds the availability monitor.
func (f *SignUpForm) SetName(name string) {
	f.mu.Lock()
	f.name = name
	f.mu.Unlock()
	f.Monitor.Input(name)
}

func (f *SignUpForm) SetEmail(email string) {
	f.mu.Lock()
	f.email = email
	f.mu.Unlock()
}

func (f *SignUpForm) SetPassword(password string) {
	f.mu.Lock()
	f.password = password
	f.mu.Unlock()
}

// Fields returns the current field values.
func (f *SignUpForm) Fields() (name, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name, f.email, f.password
}

// Submit sends the registration.
func (f *SignUpForm) Submit(ctx context.Context) (*SubmitResult, error) {
	if !f.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer f.submitting.Store(false)

	if f.Monitor.Status() == StatusTaken {
		return nil, ErrNameTaken
	}

	f.mu.Lock()
	in := SignUpInput{Name: f.name, Email: f.email, Password: f.password}
	f.mu.Unlock()

	msg, err := f.client.SignUp(ctx, in)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.name, f.email, f.password = "", "", ""
	f.mu.Unlock()
	f.Monitor.Reset()

	return &SubmitResult{
		Message:      msg,
		RedirectPath: "/verify/" + in.Name,
	}, nil
}

// Close releases the form's monitor.
func (f *SignUpForm) Close() {
	f.Monitor.Close()
}
