package streak

import (
	"context"
	"sync"

	"build-streak-go/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ChainClient is the slice of the chain reader/writer the controller drives.
type ChainClient interface {
	ReadStreak(ctx context.Context, address string) (models.StreakState, error)
	StartStreak(ctx context.Context) (common.Hash, error)
	LogDay(ctx context.Context) (common.Hash, error)
	AwaitFinalization(ctx context.Context, txHash common.Hash) error
}

// NoteStore is the slice of the note store the controller drives.
type NoteStore interface {
	Append(ctx context.Context, ownerAddress, note string) (string, error)
	FindToday(ctx context.Context, ownerAddress string) (*models.DailyLogEntry, error)
}

// LogOutcome reports what a LogDay call actually did. The chain and the note
// store cannot be written atomically, so "confirmed" splits into two cases
// rather than hiding a lost note behind a blanket success.
type LogOutcome int

const (
	// LogSkipped: the guard was not met; nothing was attempted.
	LogSkipped LogOutcome = iota
	// LogFailed: the chain write failed; the note was never touched.
	LogFailed
	// LogConfirmed: the chain advanced and the note was recorded.
	LogConfirmed
	// LogConfirmedNoteWriteFailed: the chain advanced but the note write was
	// lost. The streak counted; that day's text is missing from history.
	LogConfirmedNoteWriteFailed
)

func (o LogOutcome) String() string {
	switch o {
	case LogSkipped:
		return "skipped"
	case LogFailed:
		return "failed"
	case LogConfirmed:
		return "confirmed"
	case LogConfirmedNoteWriteFailed:
		return "confirmed_note_write_failed"
	default:
		return "unknown"
	}
}

// Controller merges on-chain streak state and off-chain note state into one
// ViewState and sequences the compound "log a day" write. One controller per
// session; it lives until the session is replaced or destroyed.
//
// Neither backing store enforces one-log-per-day atomically, so the guards
// here are the only client-side defense against double submission. A second
// client or a race can still produce a duplicate note entry; that is a
// documented best-effort limit, not a bug this layer can close.
type Controller struct {
	chain   ChainClient
	notes   NoteStore
	address string

	mu        sync.Mutex
	view      models.ViewState
	everReady bool
	onChange  func(models.ViewState)
}

func NewController(chain ChainClient, notes NoteStore, address string) *Controller {
	return &Controller{
		chain:   chain,
		notes:   notes,
		address: address,
		view:    models.ViewState{Phase: models.PhaseIdle},
	}
}

// Address returns the session address this controller serves.
func (c *Controller) Address() string {
	return c.address
}

// OnChange registers the single presentation observer. Called after every
// state transition with a copy of the view.
func (c *Controller) OnChange(handler func(models.ViewState)) {
	c.mu.Lock()
	c.onChange = handler
	c.mu.Unlock()
}

// View returns a copy of the current view state.
func (c *Controller) View() models.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Refresh drives Loading -> Ready|Error. The chain read and the today-note
// lookup run concurrently; both must succeed for Ready. On failure the last
// known streak figures are retained if a Ready state ever existed.
func (c *Controller) Refresh(ctx context.Context) models.ViewState {
	c.transition(func(v *models.ViewState) {
		v.Phase = models.PhaseLoading
		v.LastError = nil
	})

	var state models.StreakState
	var today *models.DailyLogEntry
	var chainErr, noteErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state, chainErr = c.chain.ReadStreak(gctx, c.address)
		return chainErr
	})
	g.Go(func() error {
		today, noteErr = c.notes.FindToday(gctx, c.address)
		return noteErr
	})
	_ = g.Wait()

	if chainErr != nil {
		return c.fail(models.ErrKindChainRead, chainErr)
	}
	if noteErr != nil {
		return c.fail(models.ErrKindStoreRead, noteErr)
	}

	return c.transition(func(v *models.ViewState) {
		v.StreakCount = state.StreakCount
		v.LastLogDay = state.LastLogDay
		v.HasLoggedToday = today != nil
		v.Phase = models.PhaseReady
		v.LastError = nil
		c.everReady = true
	})
}

// StartStreak submits the streak-opening transaction and awaits it. Guarded:
// only meaningful from Ready with no existing streak; otherwise a silent
// no-op returning the unchanged view.
func (c *Controller) StartStreak(ctx context.Context) models.ViewState {
	if view, ok := c.enterSubmitting(func(v models.ViewState) bool {
		return v.StreakCount == 0
	}); !ok {
		return view
	}

	txHash, err := c.chain.StartStreak(ctx)
	if err == nil {
		err = c.chain.AwaitFinalization(ctx, txHash)
	}
	if err != nil {
		return c.fail(models.ErrKindChainWrite, err)
	}

	return c.Refresh(ctx)
}

// LogDay performs the compound daily-log write:
//
//	1. submit the chain logDay transaction
//	2. await finalization
//	3. only then append the note off-chain
//	4. re-read the authoritative chain counters
//
// A failed chain write surfaces as Error and the note is never appended —
// the chain is the source of truth for "did I log today", and a failed
// on-chain log must not leave an orphaned note. A failed note write after a
// confirmed chain write is swallowed: the streak advanced, so the view goes
// Ready with no error; HasLoggedToday keeps the pre-write (stale) value so
// the next refresh re-queries the note store and narrows the window.
func (c *Controller) LogDay(ctx context.Context, note string) (LogOutcome, models.ViewState) {
	if view, ok := c.enterSubmitting(func(v models.ViewState) bool {
		return v.StreakCount > 0 && !v.HasLoggedToday
	}); !ok {
		return LogSkipped, view
	}

	txHash, err := c.chain.LogDay(ctx)
	if err == nil {
		err = c.chain.AwaitFinalization(ctx, txHash)
	}
	if err != nil {
		return LogFailed, c.fail(models.ErrKindChainWrite, err)
	}

	noteFailed := false
	if _, err := c.notes.Append(ctx, c.address, note); err != nil {
		// The chain already advanced; losing the note text is an accepted
		// inconsistency, not an error state.
		zap.L().Warn("Note write failed after confirmed chain log",
			zap.String("address", c.address),
			zap.String("tx_hash", txHash.Hex()),
			zap.Error(err))
		noteFailed = true
	}

	state, err := c.chain.ReadStreak(ctx, c.address)
	if err != nil {
		return LogFailed, c.fail(models.ErrKindChainRead, err)
	}

	view := c.transition(func(v *models.ViewState) {
		v.StreakCount = state.StreakCount
		v.LastLogDay = state.LastLogDay
		v.HasLoggedToday = !noteFailed
		v.Phase = models.PhaseReady
		v.LastError = nil
		c.everReady = true
	})

	if noteFailed {
		return LogConfirmedNoteWriteFailed, view
	}
	return LogConfirmed, view
}

// DismissError clears the surfaced error descriptor without touching
// anything else. The user escapes an Error phase with an explicit refresh.
func (c *Controller) DismissError() models.ViewState {
	return c.transition(func(v *models.ViewState) {
		v.LastError = nil
	})
}

// enterSubmitting atomically checks the action guard against the Ready view
// and, if it holds, moves to Submitting. Guard violations are silent no-ops:
// the action simply is not executed.
func (c *Controller) enterSubmitting(guard func(models.ViewState) bool) (models.ViewState, bool) {
	c.mu.Lock()
	if c.view.Phase != models.PhaseReady || !guard(c.view) {
		v := c.view
		c.mu.Unlock()
		return v, false
	}
	c.view.Phase = models.PhaseSubmitting
	view := c.view
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(view)
	}
	return view, true
}

func (c *Controller) fail(kind models.ErrorKind, err error) models.ViewState {
	zap.L().Error("Streak controller operation failed",
		zap.String("address", c.address),
		zap.String("kind", string(kind)),
		zap.Error(err))
	return c.transition(func(v *models.ViewState) {
		v.Phase = models.PhaseError
		v.LastError = &models.ErrorInfo{Kind: kind, Message: err.Error()}
		if !c.everReady {
			v.StreakCount = 0
			v.LastLogDay = 0
			v.HasLoggedToday = false
		}
	})
}

func (c *Controller) transition(mutate func(*models.ViewState)) models.ViewState {
	c.mu.Lock()
	mutate(&c.view)
	view := c.view
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(view)
	}
	return view
}
