// Package session composes roles, phases, turns, readiness, the clock and
// a sync adapter into one session. It is the surface UI collaborators and
// the authority server talk to.
package session

import (
	"context"
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/clock"
	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/syncadapter"
)

// Context is resolved once at construction and handed to every part of
// the session instead of ambient globals.
type Context struct {
	Code        string
	Mode        models.Mode
	TurnSeconds int
	Roles       game.Roles
	DirectorID  string
	Logger      *zap.Logger
}

// Options carries the collaborators of a session.
type Options struct {
	// Elements is the map collaborator. When nil the session keeps its
	// own board, filled from the elements carried by ready requests.
	Elements game.ElementSource
	// Transport reaches the remote authority. Required for networked
	// sessions that are not authoritative.
	Transport syncadapter.Transport
	// Authoritative marks the session as the authority of a networked
	// game. Local sessions are always authoritative.
	Authoritative bool
	Clock         bclock.Clock
	Logger        *zap.Logger
	RemoteTimeout time.Duration
}

// Session is safe for concurrent use. A single mutex serializes every
// mutation, whether it comes from a caller, the clock or the transport.
type Session struct {
	ctx    Context
	config models.SessionConfig

	mu            sync.Mutex
	participants  []*models.Participant
	phases        *game.PhaseController
	scheduler     *game.TurnScheduler
	gate          *game.ReadinessGate
	board         *game.ElementBoard
	source        game.ElementSource
	countdown     *clock.Countdown
	countdownGen  uint64
	version       int64
	authoritative bool
	disposed      bool

	adapter   syncadapter.Proposer
	remote    *syncadapter.Remote
	transport syncadapter.Transport

	outMu    sync.Mutex
	outbox   []Notification
	draining bool
	subs     map[int]func(Notification)
	nextSub  int
}

// New validates cfg and builds a session in the initial phase.
// Configuration problems are returned as CONFIGURATION errors.
func New(cfg models.SessionConfig, opts Options) (*Session, error) {
	cfg, err := game.NormalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	roles := game.ResolveRoles(cfg.Roster)
	if !roles.Resolved() {
		return nil, apperrors.New(apperrors.CodeConfiguration, "no director could be resolved")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", cfg.Code), zap.String("mode", string(cfg.Mode)))

	participants := make([]*models.Participant, len(cfg.Roster))
	for i := range cfg.Roster {
		p := cfg.Roster[i]
		participants[i] = &p
	}

	s := &Session{
		ctx: Context{
			Code:        cfg.Code,
			Mode:        cfg.Mode,
			TurnSeconds: cfg.TurnSeconds,
			Roles:       roles,
			DirectorID:  roles.EffectiveID(),
			Logger:      logger,
		},
		config:       cfg,
		participants: participants,
		subs:         make(map[int]func(Notification)),
	}

	s.scheduler, err = game.NewTurnScheduler(participants, s.ctx.DirectorID, cfg.Mode, logger)
	if err != nil {
		return nil, err
	}
	s.phases = game.NewPhaseController(roles)

	s.source = opts.Elements
	if s.source == nil {
		s.board = game.NewElementBoard()
		s.source = s.board
	}
	s.gate = game.NewReadinessGate(participants, s.ctx.DirectorID, cfg.Mode, s.phases, s.source)

	s.countdown = clock.New(opts.Clock, logger)
	s.countdown.OnTick(s.onTick)
	s.countdown.OnTimeout(s.onTimeout)

	switch {
	case cfg.Mode == models.ModeLocal || opts.Authoritative:
		s.authoritative = true
		s.adapter = syncadapter.NewLocal(s)
	case opts.Transport == nil:
		return nil, apperrors.New(apperrors.CodeConfiguration, "networked session needs a transport")
	default:
		s.transport = opts.Transport
		s.remote = syncadapter.NewRemote(opts.Transport, s, opts.Clock, opts.RemoteTimeout, logger)
		s.adapter = s.remote
	}

	logger.Info("session created",
		zap.Int("participants", len(participants)),
		zap.String("director", s.ctx.DirectorID),
		zap.Bool("temporaryDirector", roles.Temporary()),
		zap.Bool("authoritative", s.authoritative))
	return s, nil
}

// Context returns the resolved session context.
func (s *Session) Context() Context {
	return s.ctx
}

// Config returns the normalized configuration.
func (s *Session) Config() models.SessionConfig {
	return s.config
}

// Board returns the session-owned element board, or nil when an external
// map collaborator was supplied.
func (s *Session) Board() *game.ElementBoard {
	return s.board
}

// Mode implements syncadapter.Mirror.
func (s *Session) Mode() models.Mode {
	return s.ctx.Mode
}

// TurnNumber implements syncadapter.Mirror.
func (s *Session) TurnNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.State().TurnNumber
}

// Phase implements syncadapter.Mirror.
func (s *Session) Phase() models.PhaseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases.State()
}

// State returns the read model for UI collaborators.
func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase := s.phases.State()
	turn := s.scheduler.State()
	state := models.SessionState{
		Code:              s.ctx.Code,
		Mode:              s.ctx.Mode,
		Phase:             phase.Phase,
		Subphase:          phase.Subphase,
		TurnNumber:        turn.TurnNumber,
		RemainingSeconds:  turn.RemainingSeconds,
		DirectorID:        s.ctx.DirectorID,
		TemporaryDirector: s.ctx.Roles.Temporary(),
		Participants:      s.copyParticipants(),
		Version:           s.version,
	}
	if p := s.scheduler.CurrentParticipant(); p != nil {
		state.ActiveParticipantID = p.ID
	}
	return state
}

// CurrentParticipant returns the participant whose turn it is, or nil
// when no individual turn applies.
func (s *Session) CurrentParticipant() *models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.scheduler.CurrentParticipant(); p != nil {
		cp := *p
		return &cp
	}
	return nil
}

// Actor returns who is expected to act next: the director while the
// sector and zones are defined, the active participant otherwise. It is
// nil during simultaneous networked deployment.
func (s *Session) Actor() *models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phases.State().DirectorOnly() {
		for _, p := range s.participants {
			if p.ID == s.ctx.DirectorID {
				cp := *p
				return &cp
			}
		}
	}
	if p := s.scheduler.CurrentParticipant(); p != nil {
		cp := *p
		return &cp
	}
	return nil
}

func (s *Session) copyParticipants() []models.Participant {
	out := make([]models.Participant, len(s.participants))
	for i, p := range s.participants {
		out[i] = *p
	}
	return out
}

// Subscribe registers fn for every notification and returns a cancel
// function. Notifications are delivered in order, outside the session
// lock.
func (s *Session) Subscribe(fn func(Notification)) func() {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.outMu.Lock()
		defer s.outMu.Unlock()
		delete(s.subs, id)
	}
}

// emit queues a notification. Callers hold s.mu.
func (s *Session) emit(n Notification) {
	s.outMu.Lock()
	s.outbox = append(s.outbox, n)
	s.outMu.Unlock()
}

// flush delivers queued notifications. Only one goroutine drains at a
// time; a flush that finds another drainer leaves its notifications to it.
func (s *Session) flush() {
	for {
		s.outMu.Lock()
		if s.draining || len(s.outbox) == 0 {
			s.outMu.Unlock()
			return
		}
		s.draining = true
		batch := s.outbox
		s.outbox = nil
		subs := make([]func(Notification), 0, len(s.subs))
		for i := 0; i < s.nextSub; i++ {
			if fn, ok := s.subs[i]; ok {
				subs = append(subs, fn)
			}
		}
		s.outMu.Unlock()

		for _, n := range batch {
			for _, fn := range subs {
				fn(n)
			}
		}

		s.outMu.Lock()
		s.draining = false
		s.outMu.Unlock()
	}
}

// Init starts the transport of a networked client.
func (s *Session) Init(ctx context.Context) error {
	if in, ok := s.transport.(Initializable); ok {
		return in.Init(ctx)
	}
	return nil
}

// Dispose stops the clock, fails pending proposals and drops subscribers.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.countdown.Dispose()
	s.mu.Unlock()

	if s.remote != nil {
		s.remote.Dispose()
	}
	if d, ok := s.transport.(Disposable); ok {
		d.Dispose()
	}

	s.outMu.Lock()
	s.subs = make(map[int]func(Notification))
	s.outbox = nil
	s.outMu.Unlock()
	s.ctx.Logger.Info("session disposed")
}
