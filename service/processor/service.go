package processor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/viant/rtflow/internal/allocguard"
	"github.com/viant/rtflow/internal/clock"
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/observer"
	"github.com/viant/rtflow/service/scheduler"
	"go.uber.org/zap"
)

// Service runs the operators of one graph
type Service struct {
	config    Config
	graph     *graph.Graph
	scheduler *scheduler.Service
	sink      observer.Sink
	guard     allocguard.Guard
	clock     clock.Clock
	logger    *zap.Logger

	deterministic bool
	server        scheduler.ServerID
	spec          scheduler.TaskSpec
	misses        int

	depthMetrics []string
}

// New creates an execution loop over g
func New(g *graph.Graph, options ...Option) (*Service, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is required")
	}
	s := &Service{
		config: DefaultConfig(),
		graph:  g,
		sink:   observer.Nop{},
		guard:  allocguard.New(),
		logger: zap.NewNop(),
		server: scheduler.NoServer,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.scheduler == nil {
		s.scheduler = scheduler.New(scheduler.WithLogger(s.logger))
	}
	if s.clock == nil {
		s.clock = clock.NewMonotonic()
	}
	s.logger = s.logger.With(zap.Uint32("graph", g.ID()))
	return s, nil
}

// Graph returns the graph driven by this loop
func (s *Service) Graph() *graph.Graph { return s.graph }

// EnableDeterministic admits the graph as a real-time task. On success any
// previous reservation of this graph is released and subsequent steps are
// gated by the scheduler. A rejection leaves the current mode untouched.
func (s *Service) EnableDeterministic(spec scheduler.TaskSpec) error {
	id, err := s.scheduler.Admit(s.graph.ID(), spec, s.clock.Nanotime())
	if err != nil {
		return err
	}
	if s.server != scheduler.NoServer {
		if err := s.scheduler.Release(s.server); err != nil {
			s.logger.Warn("failed to release previous server", zap.Int("server", int(s.server)), zap.Error(err))
		}
	}
	s.server = id
	s.spec = spec
	s.misses = 0
	s.deterministic = true
	return nil
}

// DisableDeterministic stops consulting the scheduler. The admitted server
// keeps its bookkeeping but is no longer used.
func (s *Service) DisableDeterministic() {
	s.deterministic = false
}

// Deterministic returns the admitted server and whether the mode is active
func (s *Service) Deterministic() (scheduler.ServerID, bool) {
	return s.server, s.deterministic
}

// Close releases the graph reservation, if any
func (s *Service) Close() error {
	s.deterministic = false
	if s.server == scheduler.NoServer {
		return nil
	}
	err := s.scheduler.Release(s.server)
	s.server = scheduler.NoServer
	return err
}

// RunSteps executes up to n steps. It returns early, without error, when
// nothing is runnable, when the graph server is not eligible, or when ctx is
// done; a step in progress is never interrupted.
func (s *Service) RunSteps(ctx context.Context, n int) Report {
	report := Report{Requested: n}
	if n <= 0 {
		return report
	}
	started := s.clock.Nanotime()
	before := s.graph.Stats()
	for report.Steps < n {
		if ctx.Err() != nil {
			report.Stop = StopCancelled
			break
		}
		if s.deterministic && !s.admitted(ctx) {
			report.Stop = StopNotEligible
			break
		}
		op := s.next()
		if op == nil {
			report.Stop = StopStarved
			break
		}
		s.step(ctx, op)
		report.Steps++
	}
	after := s.graph.Stats()
	report.Overruns = after.Overruns - before.Overruns
	report.BodyErrors = after.BodyErrors - before.BodyErrors
	report.Duration = s.clock.Nanotime() - started
	s.sink.Metric("run.duration_ns", float64(report.Duration))
	s.sink.Metric("run.steps", float64(report.Steps))
	s.logger.Debug("run finished",
		zap.Int("steps", report.Steps),
		zap.Stringer("stop", report.Stop),
		zap.Duration("duration", report.Duration))
	return report
}

// admitted asks the scheduler whether the graph server runs now
func (s *Service) admitted(ctx context.Context) bool {
	id, ok := s.scheduler.ScheduleNext(s.clock.Nanotime())
	if srv, found := s.scheduler.Server(s.server); found && srv.Misses > s.misses {
		for ; s.misses < srv.Misses; s.misses++ {
			s.sink.Trace(ctx, observer.Event{Kind: observer.DeadlineMiss, Graph: s.graph.ID(), Operator: -1, Channel: -1})
		}
		s.sink.Metric("scheduler.misses", float64(srv.Misses))
	}
	return ok && id == s.server
}

// next returns the runnable operator with the highest priority, ties broken
// by the lowest registration index.
func (s *Service) next() *graph.Operator {
	var best *graph.Operator
	count, _ := s.graph.Counts()
	for i := 0; i < count; i++ {
		op := s.graph.Operator(graph.OperatorID(i))
		if s.graph.IsRunnable(op) && op.Outranks(best) {
			best = op
		}
	}
	return best
}

func (s *Service) step(ctx context.Context, op *graph.Operator) {
	in := s.graph.Channel(op.In)
	out := s.graph.Channel(op.Out)
	inDepth, outDepth := depthOf(in), depthOf(out)
	index := int(op.Index)

	s.sink.Trace(ctx, observer.Event{Kind: observer.OperatorQueued, Graph: s.graph.ID(), Operator: index, Name: op.Name, Channel: -1})
	s.sink.Trace(ctx, observer.Event{Kind: observer.OperatorStart, Graph: s.graph.ID(), Operator: index, Name: op.Name, Channel: -1})

	var err error
	var elapsed time.Duration
	if s.deterministic {
		s.guard.Begin()
		started := s.clock.Nanotime()
		err = invoke(ctx, op, in, out)
		elapsed = s.clock.Nanotime() - started
		allocs := s.guard.End()
		if allocs > 0 {
			s.logger.Error("heap allocation in deterministic step", zap.String("operator", op.Name), zap.Uint64("allocs", allocs))
			if s.config.EnforceAllocGuard {
				allocguard.Enforce(op.Name, allocs)
			}
		}
		s.account(ctx, op, elapsed)
	} else {
		started := s.clock.Nanotime()
		err = invoke(ctx, op, in, out)
		elapsed = s.clock.Nanotime() - started
	}

	if err != nil {
		s.graph.RecordBodyError()
		s.sink.Metric("graph.body_errors", float64(s.graph.Stats().BodyErrors))
		s.logger.Warn("operator body failed", zap.String("operator", op.Name), zap.Int("index", index), zap.Error(err))
	}
	if in != nil && in.Depth() != inDepth {
		s.depthChanged(ctx, in, index)
	}
	if out != nil && out != in && out.Depth() != outDepth {
		s.depthChanged(ctx, out, index)
	}
	s.sink.Trace(ctx, observer.Event{Kind: observer.OperatorEnd, Graph: s.graph.ID(), Operator: index, Name: op.Name, Channel: -1, Elapsed: elapsed, Err: err})
}

// account reports the measured time to the scheduler and counts overruns
func (s *Service) account(ctx context.Context, op *graph.Operator, elapsed time.Duration) {
	if err := s.scheduler.CompleteExecution(s.server, elapsed, s.spec.WCET); err != nil {
		s.logger.Warn("failed to complete execution", zap.Int("server", int(s.server)), zap.Error(err))
	}
	if elapsed <= s.spec.WCET {
		return
	}
	s.graph.RecordOverrun()
	s.sink.Trace(ctx, observer.Event{Kind: observer.Overrun, Graph: s.graph.ID(), Operator: int(op.Index), Name: op.Name, Channel: -1, Elapsed: elapsed})
	s.sink.Metric("graph.overruns", float64(s.graph.Stats().Overruns))
	s.logger.Debug("wcet overrun", zap.String("operator", op.Name), zap.Duration("elapsed", elapsed), zap.Duration("wcet", s.spec.WCET))
}

func (s *Service) depthChanged(ctx context.Context, ch *graph.Channel, operator int) {
	depth := ch.Depth()
	s.sink.Trace(ctx, observer.Event{Kind: observer.ChannelDepthChanged, Graph: s.graph.ID(), Operator: operator, Channel: int(ch.ID()), Depth: depth})
	s.sink.Metric(s.depthMetric(ch.ID()), float64(depth))
}

func (s *Service) depthMetric(id graph.ChannelID) string {
	for len(s.depthMetrics) <= int(id) {
		s.depthMetrics = append(s.depthMetrics, "channel."+strconv.Itoa(len(s.depthMetrics))+".depth")
	}
	return s.depthMetrics[id]
}

func invoke(ctx context.Context, op *graph.Operator, in, out *graph.Channel) error {
	if op.Body == nil {
		return nil
	}
	return op.Body.Execute(ctx, in, out)
}

func depthOf(ch *graph.Channel) int {
	if ch == nil {
		return 0
	}
	return ch.Depth()
}
