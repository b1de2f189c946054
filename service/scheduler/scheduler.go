package scheduler

import (
	"time"

	"go.uber.org/zap"
)

// Stats aggregates scheduler counters
type Stats struct {
	Admitted    int
	Rejected    int
	Released    int
	Misses      int
	Overruns    int
	Throttles   int
	Completions int
}

// Service is a CBS+EDF scheduler over a fixed server table. It is not safe
// for concurrent use; the owner serialises access.
type Service struct {
	config        Config
	servers       []Server
	admitted      int // milli-units
	nextID        ServerID
	stats         Stats
	logger        *zap.Logger
	missListeners []MissListener
}

// New creates a scheduler
func New(options ...Option) *Service {
	s := &Service{
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}
	defaults := DefaultConfig()
	if s.config.UtilizationBound <= 0 || s.config.UtilizationBound > MilliScale {
		s.config.UtilizationBound = defaults.UtilizationBound
	}
	if s.config.MaxServers <= 0 {
		s.config.MaxServers = defaults.MaxServers
	}
	s.servers = make([]Server, s.config.MaxServers)
	return s
}

// Config returns the effective configuration
func (s *Service) Config() Config { return s.config }

// Admit reserves bandwidth for taskID. The server starts Idle with a full
// budget, its period anchored at now and deadline now+spec.Deadline.
func (s *Service) Admit(taskID uint32, spec TaskSpec, now time.Duration) (ServerID, error) {
	requested := spec.Utilization()
	if err := spec.Validate(); err != nil {
		return NoServer, s.reject(taskID, requested, err)
	}
	if s.admitted+requested > s.config.UtilizationBound {
		return NoServer, s.reject(taskID, requested, ErrUtilizationExceeded)
	}
	slot := s.freeSlot()
	if slot < 0 {
		return NoServer, s.reject(taskID, requested, ErrServerTableFull)
	}
	id := s.nextID
	s.nextID++
	s.servers[slot] = Server{
		ID:          id,
		TaskID:      taskID,
		Spec:        spec,
		Utilization: requested,
		Budget:      spec.WCET,
		PeriodStart: now,
		Deadline:    now + spec.Deadline,
		State:       StateIdle,
		inUse:       true,
	}
	s.admitted += requested
	s.stats.Admitted++
	s.logger.Info("task admitted",
		zap.Uint32("task", taskID),
		zap.Int("server", int(id)),
		zap.Int("utilization", requested),
		zap.Int("admitted", s.admitted))
	return id, nil
}

func (s *Service) reject(taskID uint32, requested int, reason error) error {
	s.stats.Rejected++
	err := &RejectError{
		Reason:    reason,
		TaskID:    taskID,
		Requested: requested,
		Admitted:  s.admitted,
		Bound:     s.config.UtilizationBound,
	}
	s.logger.Warn("task admission rejected", zap.Error(err))
	return err
}

func (s *Service) freeSlot() int {
	for i := range s.servers {
		if !s.servers[i].inUse {
			return i
		}
	}
	return -1
}

func (s *Service) lookup(id ServerID) *Server {
	if id < 0 {
		return nil
	}
	for i := range s.servers {
		if s.servers[i].inUse && s.servers[i].ID == id {
			return &s.servers[i]
		}
	}
	return nil
}

// Release frees the server slot and returns its bandwidth
func (s *Service) Release(id ServerID) error {
	srv := s.lookup(id)
	if srv == nil {
		return ErrUnknownServer
	}
	s.admitted -= srv.Utilization
	*srv = Server{}
	s.stats.Released++
	s.logger.Info("server released", zap.Int("server", int(id)), zap.Int("admitted", s.admitted))
	return nil
}

// ScheduleNext selects, among ready servers, the one with the earliest
// absolute deadline (ties: lowest task id, then lowest server id) and marks
// it Running. Servers whose deadline passed are depleted, and counted as a
// miss when they were never selected in that window. Servers past their
// period boundary are replenished.
func (s *Service) ScheduleNext(now time.Duration) (ServerID, bool) {
	var best *Server
	for i := range s.servers {
		srv := &s.servers[i]
		if !srv.inUse {
			continue
		}
		s.refresh(srv, now)
		if srv.State == StateReady && srv.earlier(best) {
			best = srv
		}
	}
	if best == nil {
		return NoServer, false
	}
	best.State = StateRunning
	best.served = true
	return best.ID, true
}

func (s *Service) refresh(srv *Server, now time.Duration) {
	if srv.State == StateRunning {
		srv.State = StateReady
	}
	if now >= srv.Deadline && srv.State != StateDepleted {
		s.expire(srv, now)
	}
	if periods := srv.replenish(now); periods > 0 {
		// every window strictly between the old and the new one closed unserved
		if periods > 1 {
			s.miss(srv, int(periods-1), now)
		}
		if now >= srv.Deadline {
			s.expire(srv, now)
		}
	}
	if srv.State == StateIdle || srv.State == StateReady {
		if srv.eligible(now) {
			srv.State = StateReady
		} else {
			srv.State = StateIdle
		}
	}
}

func (s *Service) expire(srv *Server, now time.Duration) {
	srv.State = StateDepleted
	if srv.served {
		return
	}
	s.miss(srv, 1, now)
}

func (s *Service) miss(srv *Server, count int, now time.Duration) {
	srv.Misses += count
	s.stats.Misses += count
	s.logger.Warn("deadline miss",
		zap.Uint32("task", srv.TaskID),
		zap.Int("server", int(srv.ID)),
		zap.Int("windows", count),
		zap.Duration("deadline", srv.Deadline),
		zap.Duration("now", now),
		zap.Duration("budget", srv.Budget))
	for _, listener := range s.missListeners {
		listener(*srv, count, now)
	}
}

// CompleteExecution charges actual to the server budget. A server whose
// budget reaches zero is throttled (Depleted) until its next period
// boundary. actual > expected is counted as an overrun.
func (s *Service) CompleteExecution(id ServerID, actual, expected time.Duration) error {
	srv := s.lookup(id)
	if srv == nil {
		return ErrUnknownServer
	}
	srv.Completions++
	s.stats.Completions++
	if actual > expected {
		srv.Overruns++
		s.stats.Overruns++
		s.logger.Debug("execution overrun",
			zap.Int("server", int(id)),
			zap.Duration("actual", actual),
			zap.Duration("expected", expected))
	}
	srv.Budget -= actual
	if srv.Budget <= 0 {
		srv.Budget = 0
		srv.State = StateDepleted
		srv.Throttles++
		s.stats.Throttles++
	} else if srv.State == StateRunning {
		srv.State = StateReady
	}
	return nil
}

// Server returns a snapshot of the server
func (s *Service) Server(id ServerID) (Server, bool) {
	srv := s.lookup(id)
	if srv == nil {
		return Server{}, false
	}
	return *srv, true
}

// Utilization returns admitted bandwidth in milli-units
func (s *Service) Utilization() int {
	return s.admitted
}

// Stats returns a copy of the counters
func (s *Service) Stats() Stats {
	return s.stats
}
