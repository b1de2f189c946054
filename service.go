package rtflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/rtflow/extension"
	"github.com/viant/rtflow/internal/allocguard"
	"github.com/viant/rtflow/internal/clock"
	"github.com/viant/rtflow/internal/idgen"
	"github.com/viant/rtflow/metric"
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/observer"
	"github.com/viant/rtflow/policy"
	"github.com/viant/rtflow/service/dao/definition"
	"github.com/viant/rtflow/service/event"
	"github.com/viant/rtflow/service/meta"
	"github.com/viant/rtflow/service/processor"
	"github.com/viant/rtflow/service/scheduler"
	"github.com/viant/rtflow/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service is the control plane. It owns the graph of the session, the
// scheduler, the execution loop and the observability sinks; every public
// method runs inside one critical section.
type Service struct {
	mu sync.Mutex

	config        *Config
	logger        *zap.Logger
	clock         clock.Clock
	guard         allocguard.Guard
	sinks         []observer.Sink
	tracer        trace.Tracer
	tracing       *TracingConfig
	metaBaseURL   string
	metaFsOptions []storage.Option
	policy        *policy.Policy

	scheduler   *scheduler.Service
	metrics     *metric.Registry
	audit       *event.Recorder
	operators   *extension.Operators
	definitions *definition.Service

	nextGraphID uint32
	graph       *graph.Graph
	processor   *processor.Service
}

// New creates a control plane
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig(), logger: zap.NewNop(), nextGraphID: 1}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	if s.tracing != nil {
		s.config.Tracing = *s.tracing
	}
	if s.clock == nil {
		s.clock = clock.NewMonotonic()
	}
	if s.policy == nil {
		s.policy = policy.FromConfig(s.config.Policy)
	}
	if s.guard == nil {
		s.guard = allocguard.New()
	}
	if s.tracer == nil && s.config.Tracing.Enabled {
		tc := s.config.Tracing
		if err := tracing.Init(tc.ServiceName, tc.ServiceVersion, tc.OutputFile); err != nil {
			s.logger.Warn("failed to init tracing", zap.Error(err))
		} else {
			s.tracer = tracing.Tracer()
		}
	}
	s.metrics = metric.New()
	s.audit = event.NewRecorder(s.config.Audit, s.clock)
	s.scheduler = scheduler.New(
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithLogger(s.logger),
		scheduler.WithMissListeners(func(_ scheduler.Server, missed int, _ time.Duration) {
			s.metrics.Add("scheduler.deadline_misses", float64(missed))
		}))
	s.operators = extension.NewOperators(s.logger)
	s.definitions = definition.New(definition.WithMetaService(meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)))
}

// Config returns a copy of the effective configuration
func (s *Service) Config() Config {
	return *s.config
}

// Operators returns the operator body registry
func (s *Service) Operators() *extension.Operators {
	return s.operators
}

// Metrics returns a snapshot of the metric registry
func (s *Service) Metrics() metric.Snapshot {
	return s.metrics.Snapshot()
}

// CreateGraph creates the session graph and its execution loop
func (s *Service) CreateGraph() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createGraph()
}

func (s *Service) createGraph() (uint32, error) {
	if s.graph != nil {
		return 0, ErrGraphExists
	}
	id := s.nextGraphID
	g := graph.New(id,
		graph.WithConfig(s.config.Graph),
		graph.WithLogger(s.logger),
		graph.WithSession(idgen.Session(id)))
	sinks := []observer.Sink{s.metrics, s.audit}
	if s.tracer != nil {
		sinks = append(sinks, tracing.NewSink(s.tracer))
	}
	sinks = append(sinks, s.sinks...)
	proc, err := processor.New(g,
		processor.WithConfig(s.config.Processor),
		processor.WithScheduler(s.scheduler),
		processor.WithSink(observer.Multi(sinks...)),
		processor.WithGuard(s.guard),
		processor.WithClock(s.clock),
		processor.WithLogger(s.logger))
	if err != nil {
		return 0, err
	}
	s.nextGraphID++
	s.graph = g
	s.processor = proc
	s.logger.Info("graph created", zap.Uint32("graph", id), zap.String("session", g.Session()))
	return id, nil
}

// AddChannel adds a channel; (NoChannel, false) when no graph exists or the
// channel table is full
func (s *Service) AddChannel(capacity int) (graph.ChannelID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return graph.NoChannel, false
	}
	id, ok := s.graph.AddChannel(capacity)
	if !ok {
		s.metrics.Metric("graph.channel_table_full", float64(s.graph.Stats().ChannelTableFull))
	}
	return id, ok
}

// AddOperator adds an operator without schema checks
func (s *Service) AddOperator(id uint32, in, out graph.ChannelID, priority int, stage graph.Stage) (graph.OperatorID, bool) {
	spec := graph.NewOperatorSpec(id, priority, stage)
	spec.In, spec.Out = in, out
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addOperator(spec)
}

// AddOperatorTyped adds an operator with schema enforcement
func (s *Service) AddOperatorTyped(id uint32, in, out graph.ChannelID, priority int, stage graph.Stage, inSchema, outSchema *graph.SchemaID) bool {
	spec := graph.NewOperatorSpec(id, priority, stage)
	spec.In, spec.Out = in, out
	spec.InSchema, spec.OutSchema = inSchema, outSchema
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addOperatorStrict(spec)
}

// AddOperatorSpec adds an operator with a body; strict selects schema
// enforcement
func (s *Service) AddOperatorSpec(spec graph.OperatorSpec, strict bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strict {
		return s.addOperatorStrict(spec)
	}
	_, ok := s.addOperator(spec)
	return ok
}

func (s *Service) addOperator(spec graph.OperatorSpec) (graph.OperatorID, bool) {
	if s.graph == nil {
		return 0, false
	}
	index, ok := s.graph.AddOperator(spec)
	if !ok {
		s.publishWiring()
	}
	return index, ok
}

func (s *Service) addOperatorStrict(spec graph.OperatorSpec) bool {
	if s.graph == nil {
		return false
	}
	ok := s.graph.AddOperatorStrict(spec)
	if !ok {
		s.publishWiring()
	}
	return ok
}

func (s *Service) publishWiring() {
	stats := s.graph.Stats()
	s.metrics.Metric("graph.mismatches", float64(stats.Mismatches))
	s.metrics.Metric("graph.operator_table_full", float64(stats.OperatorTableFull))
	s.metrics.Metric("graph.out_of_range", float64(stats.OutOfRange))
}

// StartGraph runs up to steps steps of the graph
func (s *Service) StartGraph(ctx context.Context, steps int) (processor.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processor == nil {
		return processor.Report{Requested: steps}, ErrNoGraph
	}
	var span *tracing.Span
	if s.tracer != nil {
		ctx, span = tracing.StartSpan(ctx, s.tracer, "graph.run")
		span.WithInt("graph.id", int(s.graph.ID())).WithInt("steps.requested", steps)
	}
	report := s.processor.RunSteps(ctx, steps)
	span.WithInt("steps", report.Steps).WithAttributes(map[string]string{"stop": report.Stop.String()})
	tracing.EndSpan(span, nil)
	return report, nil
}

// EnableDeterministic admits the graph under the CBS+EDF scheduler. It
// returns false when no graph exists or the admission was rejected.
func (s *Service) EnableDeterministic(wcet, period, deadline time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enableDeterministic(scheduler.TaskSpec{WCET: wcet, Period: period, Deadline: deadline}) == nil
}

func (s *Service) enableDeterministic(spec scheduler.TaskSpec) error {
	if s.processor == nil {
		return ErrNoGraph
	}
	if err := s.processor.EnableDeterministic(spec); err != nil {
		s.metrics.Add("scheduler.rejections", 1)
		s.logger.Warn("deterministic mode rejected",
			zap.Uint32("graph", s.graph.ID()),
			zap.Duration("wcet", spec.WCET),
			zap.Duration("period", spec.Period),
			zap.Duration("deadline", spec.Deadline),
			zap.Error(err))
		return err
	}
	s.metrics.Metric("scheduler.utilization", float64(s.scheduler.Utilization()))
	return nil
}

// DisableDeterministic excludes the scheduler from subsequent steps
func (s *Service) DisableDeterministic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processor == nil {
		return false
	}
	s.processor.DisableDeterministic()
	return true
}

// ResetOverruns clears the graph overrun counter
func (s *Service) ResetOverruns() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return false
	}
	s.graph.ResetOverruns()
	s.metrics.Metric("graph.overruns", 0)
	return true
}

// Status returns a snapshot of the control plane
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

func (s *Service) status() Status {
	ret := Status{
		Utilization: s.scheduler.Utilization(),
		Scheduler:   s.scheduler.Stats(),
		AuditLen:    s.audit.Len(),
		Policy:      policy.ToConfig(s.policy),
	}
	if s.graph == nil {
		return ret
	}
	ret.GraphID = s.graph.ID()
	ret.Session = s.graph.Session()
	ret.Operators, ret.Channels = s.graph.Counts()
	ret.Graph = s.graph.Stats()
	id, enabled := s.processor.Deterministic()
	ret.Deterministic = enabled
	if srv, ok := s.scheduler.Server(id); ok {
		ret.Server = &srv
	}
	return ret
}

// DrainAudit passes every buffered audit record to fn, oldest first, and
// returns the number of records drained
func (s *Service) DrainAudit(fn func(record event.Record)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audit.Drain(fn)
}

// LoadDefinition loads a graph definition from URL
func (s *Service) LoadDefinition(ctx context.Context, URL string) (*definition.Definition, error) {
	return s.definitions.Load(ctx, URL)
}

// Apply builds the definition on the session graph, creating the graph when
// needed. Every rejected element is reported; elements accepted before a
// rejection stay in the graph since tables never shrink.
func (s *Service) Apply(ctx context.Context, def *definition.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		if _, err := s.createGraph(); err != nil {
			return err
		}
	}
	channels := make([]graph.ChannelID, len(def.Channels))
	var errs []error
	for i, ch := range def.Channels {
		id, ok := s.graph.AddChannel(ch.Capacity)
		if !ok {
			errs = append(errs, fmt.Errorf("channel %v: %w", ch.Name, ErrChannelRejected))
		}
		channels[i] = id
	}
	resolve := func(name string) (graph.ChannelID, error) {
		if name == "" {
			return graph.NoChannel, nil
		}
		id := channels[def.ChannelIndex(name)]
		if id == graph.NoChannel {
			return id, fmt.Errorf("channel %v: %w", name, ErrChannelRejected)
		}
		return id, nil
	}
	for _, op := range def.Operators {
		spec := graph.NewOperatorSpec(op.ID, op.Priority, op.Stage)
		spec.Name = op.Name
		var inErr, outErr error
		spec.In, inErr = resolve(op.In)
		spec.Out, outErr = resolve(op.Out)
		if err := errors.Join(inErr, outErr); err != nil {
			errs = append(errs, fmt.Errorf("operator %v: %w: %w", op.Name, ErrOperatorRejected, err))
			continue
		}
		spec.InSchema, spec.OutSchema = op.InSchema, op.OutSchema
		if op.Body != "" {
			body, err := s.operators.Lookup(op.Body)
			if err != nil {
				errs = append(errs, fmt.Errorf("operator %v: %w", op.Name, err))
				continue
			}
			spec.Body = body
		}
		var ok bool
		if op.Typed() {
			ok = s.addOperatorStrict(spec)
		} else {
			_, ok = s.addOperator(spec)
		}
		if !ok {
			errs = append(errs, fmt.Errorf("operator %v: %w", op.Name, ErrOperatorRejected))
		}
	}
	if d := def.Deterministic; d != nil {
		if err := s.enableDeterministic(scheduler.TaskSpec{WCET: d.WCET, Period: d.Period, Deadline: d.Deadline}); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to apply definition %v: %w", def.Name, errors.Join(errs...))
	}
	s.logger.Info("definition applied", zap.String("definition", def.Name), zap.Uint32("graph", s.graph.ID()))
	return nil
}

// Close releases the scheduler reservation and flushes traces
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.processor != nil {
		err = s.processor.Close()
	}
	if s.config.Tracing.Enabled {
		err = errors.Join(err, tracing.Shutdown(ctx))
	}
	return err
}
