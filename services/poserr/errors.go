// Package poserr defines the typed errors shared by the login and session
// services. Handlers map them to HTTP statuses; the orchestrator forwards
// them untouched.
package poserr

import "tillpoint/models"

// ValidationError reports malformed input. Never retried automatically.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ExpiredOrUsedCodeError reports that no acceptable one-time code matched.
// The message is constant regardless of how close the attempt was, so the
// response cannot be used to enumerate codes or accounts.
type ExpiredOrUsedCodeError struct{}

func (e ExpiredOrUsedCodeError) Error() string {
	return "the code is invalid or has expired"
}

// DeviceDeniedError reports a device-gate rejection. Terminal for that login
// attempt.
type DeviceDeniedError struct {
	Reason string
}

func (e DeviceDeniedError) Error() string {
	return e.Reason
}

// NoTerminalAvailableError reports that the branch has no active terminal at
// all, which blocks session creation.
type NoTerminalAvailableError struct {
	BranchID string
}

func (e NoTerminalAvailableError) Error() string {
	return "no active terminal is available for this branch"
}

// ConcurrentSessionConflictError reports that another login created an open
// session for the same cashier first. Existing carries that session so the
// caller can resume it instead of retrying creation.
type ConcurrentSessionConflictError struct {
	Existing *models.POSSession
}

func (e ConcurrentSessionConflictError) Error() string {
	return "an open session was created concurrently for this cashier"
}

// InvalidSessionStateError reports an attempt to mutate or close a session
// that is not open.
type InvalidSessionStateError struct {
	SessionID string
	Status    string
}

func (e InvalidSessionStateError) Error() string {
	return "session " + e.SessionID + " is not open"
}
