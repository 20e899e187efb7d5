package models

import "fmt"

// StreakState is a read-only cached copy of the contract's per-address
// state. The contract is the sole authority; this struct carries no
// independent meaning.
type StreakState struct {
	StreakCount uint64 `json:"streakCount"`
	LastLogDay  uint64 `json:"lastLogDay"` // unix day index, 0 = never logged
}

// Validate enforces the contract invariant: an address has a nonzero streak
// if and only if it has logged at least one day.
func (s StreakState) Validate() error {
	if s.StreakCount > 0 && s.LastLogDay == 0 {
		return fmt.Errorf("invalid streak state: count=%d but last log day is zero", s.StreakCount)
	}
	if s.StreakCount == 0 && s.LastLogDay != 0 {
		return fmt.Errorf("invalid streak state: zero count but last log day=%d", s.LastLogDay)
	}
	return nil
}

// Phase is the controller's lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseSubmitting Phase = "submitting"
	PhaseError      Phase = "error"
)

// ErrorKind classifies a surfaced failure for the presentation layer.
type ErrorKind string

const (
	ErrKindSessionUnavailable ErrorKind = "session_unavailable"
	ErrKindChainRead          ErrorKind = "chain_read"
	ErrKindChainWrite         ErrorKind = "chain_write"
	ErrKindStoreRead          ErrorKind = "store_read"
	ErrKindStoreWrite         ErrorKind = "store_write"
)

// ErrorInfo is the presentation-safe error descriptor carried in ViewState.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ViewState is the single observable output of the synchronization
// controller: chain state plus note state merged into one view. Recomputed
// after every read or write, never persisted.
type ViewState struct {
	StreakCount    uint64     `json:"streakCount"`
	LastLogDay     uint64     `json:"lastLogDay"`
	HasLoggedToday bool       `json:"hasLoggedToday"`
	Phase          Phase      `json:"phase"`
	LastError      *ErrorInfo `json:"lastError,omitempty"`
}
