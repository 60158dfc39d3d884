// Package confirm implements the single-slot "are you sure?" dialog that
// guards destructive cart changes.
package confirm

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNothingPending is returned by Confirm when no request is open.
	ErrNothingPending = errors.New("no confirmation is pending")
	// ErrStaleConfirmation is returned by Confirm when the caller answers a
	// request that has since been replaced.
	ErrStaleConfirmation = errors.New("confirmation request was superseded")
)

// State of the workflow.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Variant styles the confirm button.
type Variant string

const (
	VariantDanger  Variant = "danger"
	VariantSuccess Variant = "success"
	VariantPrimary Variant = "primary"
)

// DefaultIcon is shown when a request sets none.
const DefaultIcon = "⚠️"

// EscapeKey is the only key that dismisses the dialog.
const EscapeKey = "Escape"

// Request describes one pending confirmation. OnConfirm is the deferred
// mutation; it runs at most once and only through Confirm.
type Request struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title"`
	Message     string                    `json:"message"`
	ConfirmText string                    `json:"confirm_text"`
	CancelText  string                    `json:"cancel_text"`
	Variant     Variant                   `json:"variant"`
	Icon        string                    `json:"icon"`
	OnConfirm   func(ctx context.Context) `json:"-"`
}

// Workflow holds at most one pending Request. It is not safe for concurrent
// use; its owner serializes access.
type Workflow struct {
	pending *Request
}

// New returns an idle workflow.
func New() *Workflow {
	return &Workflow{}
}

// Ask opens req, replacing and silently abandoning any request already
// pending. Missing presentation fields get the dialog defaults. It returns
// the request as stored.
func (w *Workflow) Ask(req Request) Request {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.ConfirmText == "" {
		req.ConfirmText = "Confirm"
	}
	if req.CancelText == "" {
		req.CancelText = "Cancel"
	}
	if req.Variant == "" {
		req.Variant = VariantDanger
	}
	if req.Icon == "" {
		req.Icon = DefaultIcon
	}
	w.pending = &req
	return req
}

// Confirm runs the pending request's mutation and returns to idle. An empty
// id answers whatever is pending; a non-empty id must match it.
func (w *Workflow) Confirm(ctx context.Context, id string) error {
	if w.pending == nil {
		return ErrNothingPending
	}
	if id != "" && id != w.pending.ID {
		return ErrStaleConfirmation
	}

	req := *w.pending
	w.pending = nil
	if req.OnConfirm != nil {
		req.OnConfirm(ctx)
	}
	return nil
}

// Cancel returns to idle without running the mutation. It reports whether a
// request was pending.
func (w *Workflow) Cancel() bool {
	had := w.pending != nil
	w.pending = nil
	return had
}

// Dismiss is a click outside the dialog; it behaves like Cancel.
func (w *Workflow) Dismiss() bool {
	return w.Cancel()
}

// KeyPress cancels on Escape and ignores every other key.
func (w *Workflow) KeyPress(key string) bool {
	if key != EscapeKey {
		return false
	}
	return w.Cancel()
}

// State reports whether a request is pending.
func (w *Workflow) State() State {
	if w.pending != nil {
		return StatePending
	}
	return StateIdle
}

// Pending returns a copy of the open request.
func (w *Workflow) Pending() (Request, bool) {
	if w.pending == nil {
		return Request{}, false
	}
	return *w.pending, true
}
