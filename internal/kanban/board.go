// Package kanban keeps an in-memory view of a hiring pipeline board and
// synchronizes it with the careers platform.
//
// Moves are applied optimistically: the local board changes immediately and
// the platform is asked to persist the move afterwards. A rejected move is not
// reverted in place; the whole board is reloaded from the platform instead,
// because the platform may have changed for unrelated reasons in the meantime.
package kanban

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/pipeboard/internal/careers"
	"github.com/spigell/pipeboard/internal/event"
	"github.com/spigell/pipeboard/internal/logger"
)

const defaultReloadTimeout = 15 * time.Second

// Remote is the system of record for boards. *careers.Client implements it.
type Remote interface {
	FetchBoard(ctx context.Context, pipelineID, jobID string) (*careers.BoardPayload, error)
	MoveApplication(ctx context.Context, applicationID, stageID, note string) (*careers.Application, error)
}

// Option configures a PipelineBoard.
type Option func(*PipelineBoard)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *PipelineBoard) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBus publishes events to bus instead of a private one.
func WithBus(bus *event.Bus) Option {
	return func(p *PipelineBoard) {
		if bus != nil {
			p.bus = bus
		}
	}
}

// WithReloadTimeout bounds the reload that follows a rejected move.
func WithReloadTimeout(d time.Duration) Option {
	return func(p *PipelineBoard) {
		if d > 0 {
			p.reloadTimeout = d
		}
	}
}

// PipelineBoard owns the board of one view. It is safe for concurrent use.
type PipelineBoard struct {
	remote        Remote
	bus           *event.Bus
	logger        *zap.Logger
	reloadTimeout time.Duration

	cards cardLocks

	mu sync.Mutex
	// board is nil until the first successful load.
	board *Board
	// generation is bumped by every load request; responses of older requests are dropped.
	generation uint64
	pipelineID string
	jobID      string
	// states holds cards that are not Settled.
	states map[string]CardState
	stale  bool
}

func New(remote Remote, opts ...Option) *PipelineBoard {
	p := &PipelineBoard{
		remote:        remote,
		logger:        zap.NewNop(),
		reloadTimeout: defaultReloadTimeout,
		states:        make(map[string]CardState),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.bus == nil {
		p.bus = event.NewBus(p.logger)
	}

	return p
}

// Bus returns the bus the board publishes Moved, MoveFailed and Reloaded events to.
func (p *PipelineBoard) Bus() *event.Bus {
	return p.bus
}

// Load fetches the board of the pipeline (scoped to jobID when set) and
// replaces the held board with it. On error the held board is left as it was.
func (p *PipelineBoard) Load(ctx context.Context, pipelineID, jobID string) (*Board, error) {
	p.mu.Lock()
	reason := event.ReasonManual
	if p.board == nil {
		reason = event.ReasonInitial
	}
	p.mu.Unlock()

	return p.load(ctx, pipelineID, jobID, reason)
}

// Reload fetches the board that was requested last. After a failed load that
// is the board still held.
func (p *PipelineBoard) Reload(ctx context.Context, reason event.ReloadReason) (*Board, error) {
	p.mu.Lock()
	pipelineID, jobID := p.pipelineID, p.jobID
	p.mu.Unlock()

	if pipelineID == "" {
		return nil, ErrNotLoaded
	}

	return p.load(ctx, pipelineID, jobID, reason)
}

func (p *PipelineBoard) load(ctx context.Context, pipelineID, jobID string, reason event.ReloadReason) (*Board, error) {
	if pipelineID == "" {
		return nil, &LoadError{JobID: jobID, Err: errors.New("pipeline id is required")}
	}

	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.pipelineID, p.jobID = pipelineID, jobID
	p.mu.Unlock()

	log := logger.WithBoard(p.logger, pipelineID, jobID).With(
		zap.Uint64("generation", gen),
		zap.Stringer("reason", reason),
	)

	payload, err := p.remote.FetchBoard(ctx, pipelineID, jobID)
	var board *Board
	if err == nil {
		board, err = FromPayload(pipelineID, jobID, payload)
	}

	if err != nil {
		p.mu.Lock()
		if gen == p.generation {
			if reason == event.ReasonMoveFailed {
				// The optimistic state of the rejected move is still shown.
				p.stale = true
			}
			// Reload keeps targeting the board that is actually held.
			if p.board != nil {
				p.pipelineID, p.jobID = p.board.PipelineID, p.board.JobID
			}
		}
		p.mu.Unlock()

		log.Warn("loading board failed", zap.Error(err))
		return nil, &LoadError{PipelineID: pipelineID, JobID: jobID, Err: err}
	}

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		log.Debug("discarding stale board response")
		return nil, ErrSuperseded
	}
	p.board = board
	p.stale = false
	snapshot := board.Clone()
	p.mu.Unlock()

	log.Info("board loaded", zap.Int("stages", len(board.Stages)), zap.Int("cards", board.Len()))
	p.bus.Publish(event.NewReloaded(pipelineID, jobID, gen, reason))

	return snapshot, nil
}

// Move relocates a card and persists the move on the platform.
//
// The board changes before the platform is called, so observers see the card
// at its new position while the move is pending. Moves of the same card are
// serialized. Moves that do not match the current board are ignored.
func (p *PipelineBoard) Move(ctx context.Context, req MoveRequest) MoveResult {
	unlock := p.cards.lock(req.CardID)
	defer unlock()

	log := logger.WithFields(p.logger, logger.MoveFields(req.CardID, "", req.FromStageID, req.ToStageID)...)

	p.mu.Lock()
	if p.board == nil {
		p.mu.Unlock()
		return MoveResult{Outcome: MoveInvalid, Err: &ValidationError{CardID: req.CardID, Reason: "board is not loaded", Err: ErrNotLoaded}}
	}

	from, err := p.board.validateMove(req)
	if err != nil {
		p.mu.Unlock()
		log.Debug("ignoring invalid move", zap.Error(err))
		return MoveResult{Outcome: MoveInvalid, Err: err}
	}

	if from.StageID == req.ToStageID && from.Index == req.ToIndex {
		p.mu.Unlock()
		return MoveResult{Outcome: MoveNoop, From: from, To: from}
	}

	card := p.board.Cards[req.CardID]
	to := p.board.applyMove(req, from)
	p.states[req.CardID] = PendingMove
	pipelineID, jobID := p.board.PipelineID, p.board.JobID
	p.mu.Unlock()

	log = logger.WithBoard(log, pipelineID, jobID).With(zap.String(logger.FieldApplication, card.ApplicationID))
	log.Debug("card moved locally", zap.Stringer("from", from), zap.Stringer("to", to))

	_, err = p.remote.MoveApplication(ctx, card.ApplicationID, req.ToStageID, req.Note)
	if err == nil {
		p.settle(req.CardID)
		log.Info("card moved")
		p.bus.Publish(event.NewMoved(card.ID, card.ApplicationID, from, to))
		return MoveResult{Outcome: MoveApplied, From: from, To: to}
	}

	moveErr := &MoveError{CardID: card.ID, ApplicationID: card.ApplicationID, ToStageID: req.ToStageID, Err: err}
	log.Warn("move rejected, reloading board", zap.Error(err))

	p.mu.Lock()
	p.states[req.CardID] = Reloading
	p.mu.Unlock()

	// The caller's context may be the reason the move failed.
	reloadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.reloadTimeout)
	defer cancel()

	// The view may have switched boards while the move was in flight; reload
	// whatever it asked for last.
	_, reloadErr := p.Reload(reloadCtx, event.ReasonMoveFailed)
	if errors.Is(reloadErr, ErrSuperseded) {
		reloadErr = nil
	}
	if reloadErr != nil {
		log.Error("reloading board after rejected move failed", zap.Error(reloadErr))
	}

	p.settle(req.CardID)
	p.bus.Publish(event.NewMoveFailed(card.ID, card.ApplicationID, from, to, moveErr, reloadErr))

	result := MoveResult{Outcome: MoveFailed, From: from, To: to, Err: moveErr}
	if reloadErr != nil {
		result.Err = errors.Join(moveErr, reloadErr)
	}

	return result
}

func (p *PipelineBoard) settle(cardID string) {
	p.mu.Lock()
	delete(p.states, cardID)
	p.mu.Unlock()
}

// Snapshot returns a copy of the held board.
func (p *PipelineBoard) Snapshot() (*Board, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.board == nil {
		return nil, false
	}
	return p.board.Clone(), true
}

// CardState returns the move state of a card.
func (p *PipelineBoard) CardState(cardID string) CardState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.states[cardID]
}

// Stale reports whether the reload after a rejected move failed, leaving a
// board that the platform never confirmed. The next successful load clears it.
func (p *PipelineBoard) Stale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stale
}

// Generation returns the number of load requests made so far.
func (p *PipelineBoard) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.generation
}

// cardLocks serializes moves per card.
type cardLocks struct {
	mu    sync.Mutex
	locks map[string]*cardLock
}

type cardLock struct {
	sync.Mutex
	refs int
}

func (c *cardLocks) lock(cardID string) (unlock func()) {
	c.mu.Lock()
	if c.locks == nil {
		c.locks = make(map[string]*cardLock)
	}
	l, ok := c.locks[cardID]
	if !ok {
		l = &cardLock{}
		c.locks[cardID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, cardID)
		}
		c.mu.Unlock()
	}
}
