// Package pipeline runs a simulated trigger workload over the payload
// factories.
//
// # Architecture
//
// A run consists of three stages connected by channels:
//   - Producers: one goroutine per simulated string hub, building hits (and
//     periodic beacons) from synthetic delta records
//   - Trigger: groups incoming payloads into trigger requests; each request
//     holds deep copies, so the originals are disposed once it is built
//   - Consumer: deep-copies every request through the master factory,
//     checks the copy against the original and disposes both
//
// Payloads travel between stages as pool.Handle values. A handle is moved
// at every send, so exactly one stage owns a payload at any time. When the
// run ends, for whatever reason, the input of every stage is drained and
// what is found there released, so all pools report no instances in use
// afterwards. The first stage error cancels the other stages before any
// draining starts.
//
// # Basic Usage
//
//	suite, _ := factory.NewSuite(factory.SuiteOptions{}, logger)
//	p := pipeline.New(cfg.Pipeline, suite, logger)
//	stats, err := p.Run(ctx)
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dglo/payload-sub005/pkg/config"
	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/factory"
	"github.com/dglo/payload-sub005/pkg/hitrec"
	"github.com/dglo/payload-sub005/pkg/logger"
	"github.com/dglo/payload-sub005/pkg/metrics"
	"github.com/dglo/payload-sub005/pkg/observability"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

type handle = pool.Handle[payload.Payload]

// Pipeline is one configured simulation. It can be run more than once.
type Pipeline struct {
	cfg     config.PipelineConfig
	suite   *factory.Suite
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.PipelineMetrics

	hits     atomic.Int64
	beacons  atomic.Int64
	triggers atomic.Int64
	verified atomic.Int64
	failures atomic.Int64
	uid      atomic.Int32
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTracer records a span for every trigger request built.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithMetrics publishes stage counters and latencies to m.
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a pipeline drawing payloads from suite.
func New(cfg config.PipelineConfig, suite *factory.Suite, log *zap.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Get()
	}
	if cfg.HitsPerTrigger <= 0 {
		cfg.HitsPerTrigger = 1
	}
	if cfg.Producers <= 0 {
		cfg.Producers = 1
	}

	p := &Pipeline{
		cfg:    cfg,
		suite:  suite,
		logger: log,
		tracer: noop.NewTracerProvider().Tracer("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline until every producer has finished or ctx is
// done. The first stage error cancels the run and is returned.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	p.reset()
	start := time.Now()
	tracker := metrics.NewThroughputTracker(p.throughputGauge())

	g, gctx := errgroup.WithContext(ctx)
	hits := make(chan handle, p.cfg.BufferSize)
	reqs := make(chan handle, p.cfg.BufferSize)

	g.Go(func() error {
		defer close(hits)
		pg, pctx := errgroup.WithContext(gctx)
		for i := 0; i < p.cfg.Producers; i++ {
			i := i
			pg.Go(func() error {
				return p.produce(logger.WithStage(pctx, StageProducer), i, hits)
			})
		}
		return pg.Wait()
	})
	// Inputs are drained in the background once their stage returns, so a
	// stage error cancels the run right away.
	var drains sync.WaitGroup
	drainAfter := func(in <-chan handle, err error) error {
		drains.Add(1)
		go func() {
			defer drains.Done()
			drain(in)
		}()
		return err
	}

	g.Go(func() error {
		defer close(reqs)
		return drainAfter(hits, p.trigger(logger.WithStage(gctx, StageTrigger), hits, reqs, tracker))
	})
	g.Go(func() error {
		return drainAfter(reqs, p.consume(logger.WithStage(gctx, StageConsumer), reqs))
	})

	err := g.Wait()
	drains.Wait()

	stats := Stats{
		HitsProduced:    p.hits.Load(),
		BeaconsProduced: p.beacons.Load(),
		TriggersBuilt:   p.triggers.Load(),
		CopiesVerified:  p.verified.Load(),
		Failures:        p.failures.Load(),
		Duration:        time.Since(start),
		ThroughputPPS:   tracker.GetAndReset(),
		Pools: []pool.Stats{
			p.suite.Hits.Stats(),
			p.suite.Beacons.Stats(),
			p.suite.Triggers.Stats(),
		},
	}

	if err != nil {
		p.logger.Warn("pipeline stopped", zap.Error(err), zap.Int64("triggers", stats.TriggersBuilt))
		return stats, err
	}
	p.logger.Info("pipeline finished",
		zap.Int64("hits", stats.HitsProduced),
		zap.Int64("beacons", stats.BeaconsProduced),
		zap.Int64("triggers", stats.TriggersBuilt),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

func (p *Pipeline) reset() {
	p.hits.Store(0)
	p.beacons.Store(0)
	p.triggers.Store(0)
	p.verified.Store(0)
	p.failures.Store(0)
}

// produce emits the hits of one simulated hub.
func (p *Pipeline) produce(ctx context.Context, hub int, out chan<- handle) error {
	log := logger.FromContext(ctx, p.logger).With(zap.Int("hub", hub))
	src := payload.NewSourceID(payload.SimHubID, hub+1)

	for e := 0; e < p.cfg.Events; e++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rec := syntheticRecord(hub, e)
		h, err := p.suite.Hits.CreateFromRecord(rec, src)
		if err != nil {
			p.fail(StageProducer, err)
			log.Debug("hit construction failed", zap.Int("event", e), zap.Error(err))
			return err
		}
		p.created(payload.KindSimpleHit, &p.hits)

		var beacon handle
		if p.cfg.BeaconEvery > 0 && e%p.cfg.BeaconEvery == 0 {
			b, err := p.suite.Beacons.CreateFromRecord(rec, src)
			if err != nil {
				h.Dispose()
				p.fail(StageProducer, err)
				return err
			}
			p.created(payload.KindBeaconHit, &p.beacons)
			beacon = pool.Own[payload.Payload](b)
		}

		hit := pool.Own[payload.Payload](h)
		if err := send(ctx, out, &hit); err != nil {
			beacon.Release()
			return err
		}
		if beacon.Valid() {
			if err := send(ctx, out, &beacon); err != nil {
				return err
			}
		}
	}
	return nil
}

// trigger groups payloads into trigger requests.
func (p *Pipeline) trigger(ctx context.Context, in <-chan handle, out chan<- handle, tracker *metrics.ThroughputTracker) error {
	log := logger.FromContext(ctx, p.logger)
	batch := make([]handle, 0, p.cfg.HitsPerTrigger)
	defer func() { releaseAll(batch) }()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := p.buildRequest(ctx, batch, out)
		releaseAll(batch)
		batch = batch[:0]
		if err == nil {
			tracker.Increment(1)
			return nil
		}
		if errors.IsFatal(err) || ctx.Err() != nil {
			return err
		}
		log.Warn("trigger request dropped", zap.Error(err))
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case h, ok := <-in:
			if !ok {
				return flush()
			}
			batch = append(batch, h)
			if len(batch) == p.cfg.HitsPerTrigger {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

func (p *Pipeline) buildRequest(ctx context.Context, batch []handle, out chan<- handle) error {
	children := make([]payload.Payload, len(batch))
	for i := range batch {
		children[i] = batch[i].Value()
	}
	first, last := factory.TimeWindow(children)

	ctx, span := observability.StartSpan(ctx, p.tracer, "trigger.build",
		attribute.Int("children", len(children)))
	timer := metrics.NewTimer()

	req, err := p.suite.Triggers.CreatePayload(factory.RequestHeader{
		UID:         p.uid.Add(1),
		TriggerType: 1,
		ConfigID:    1,
		Source:      payload.NewSourceID(payload.GlobalTriggerID, 0),
		FirstTime:   first,
		LastTime:    last,
	}, children)
	if p.metrics != nil {
		p.metrics.ObserveStage(StageTrigger, timer.Stop())
	}
	observability.EndSpan(span, err)
	if err != nil {
		p.fail(StageTrigger, err)
		return err
	}
	p.created(payload.KindTriggerRequest, &p.triggers)

	h := pool.Own[payload.Payload](req)
	return send(ctx, out, &h)
}

// consume deep-copies every request and checks the copy.
func (p *Pipeline) consume(ctx context.Context, in <-chan handle) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case h, ok := <-in:
			if !ok {
				return nil
			}
			err := p.verify(h.Value())
			h.Release()
			if err != nil {
				p.fail(StageConsumer, err)
				return err
			}
			p.verified.Add(1)
		}
	}
}

func (p *Pipeline) verify(orig payload.Payload) error {
	cp, err := p.suite.Master.CopyPayload(orig)
	if err != nil {
		return err
	}
	defer cp.Dispose()

	want, ok := orig.(*payload.TriggerRequest)
	got, ok2 := cp.(*payload.TriggerRequest)
	if !ok || !ok2 {
		return errors.New(errors.ErrorTypeInternal, "consumer expects trigger requests")
	}
	if want.Len() != got.Len() || want.UID != got.UID {
		return errors.New(errors.ErrorTypeInternal, "copied request differs").
			WithDetail("uid", want.UID)
	}
	for i, c := range got.Payloads() {
		o := want.Payloads()[i]
		if o == c || o.Kind() != c.Kind() || o.UTCTime() != c.UTCTime() {
			return errors.New(errors.ErrorTypeInternal, "copied child differs").
				WithDetail("uid", want.UID).
				WithDetail("index", i)
		}
	}
	return nil
}

func (p *Pipeline) created(kind payload.Kind, n *atomic.Int64) {
	n.Add(1)
	if p.metrics != nil {
		p.metrics.PayloadsCreated.WithLabelValues(kind.String()).Inc()
	}
}

func (p *Pipeline) fail(stage string, err error) {
	p.failures.Add(1)
	if p.metrics == nil {
		return
	}
	typ := "other"
	var pe *errors.Error
	if errors.As(err, &pe) {
		typ = string(pe.Type)
	}
	p.metrics.Failures.WithLabelValues(stage, typ).Inc()
}

func (p *Pipeline) throughputGauge() prometheus.Gauge {
	if p.metrics == nil {
		return nil
	}
	return p.metrics.Throughput.WithLabelValues(StageTrigger)
}

// send moves h onto out. If ctx ends first the payload is released.
func send(ctx context.Context, out chan<- handle, h *handle) error {
	moved := h.Move()
	select {
	case out <- moved:
		return nil
	case <-ctx.Done():
		moved.Release()
		return ctx.Err()
	}
}

func releaseAll(hs []handle) {
	for i := range hs {
		hs[i].Release()
	}
}

// drain releases everything left in in until it is closed.
func drain(in <-chan handle) {
	for h := range in {
		h.Release()
	}
}

func syntheticRecord(hub, event int) hitrec.DeltaRecord {
	return hitrec.DeltaRecord{
		DOM:         uint64(0x100000 + hub*64 + event%60 + 1),
		UTC:         int64(event)*1000 + int64(hub),
		TriggerType: 2,
		ConfigID:    1000,
		TriggerMode: int16(hitrec.ModeSPE),
		LCMode:      uint8((hub + event) % 4),
	}
}
