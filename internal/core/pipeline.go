package core

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"bondflow/internal/booking"
	"bondflow/internal/bus"
	"bondflow/internal/execution"
	"bondflow/internal/feed"
	"bondflow/internal/gui"
	"bondflow/internal/historical"
	"bondflow/internal/inquiry"
	"bondflow/internal/marketdata"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/internal/obs"
	"bondflow/internal/ops"
	"bondflow/internal/persist"
	"bondflow/internal/position"
	"bondflow/internal/pricing"
	"bondflow/internal/risk"
	"bondflow/internal/streaming"
	"bondflow/pkg/conn"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Input file names, fed in this order.
const (
	FilePrices     = "prices.txt"
	FileMarketData = "marketdata.txt"
	FileTrades     = "trades.txt"
	FileInquiries  = "inquiries.txt"
)

type Option func(*Pipeline)

// WithClock replaces the wall clock used to timestamp persisted lines.
func WithClock(clock historical.Clock) Option {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

// WithRunID replaces the generated run id.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		p.runID = id
	}
}

// WithMetrics shares a metrics container with the caller.
func WithMetrics(m *obs.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

type input struct {
	name      string
	connector interface {
		Subscribe(ctx context.Context, r io.Reader) error
	}
}

// Pipeline owns every stage of a run.
type Pipeline struct {
	cfg     ops.Loaded
	clock   historical.Clock
	runID   string
	metrics *obs.Metrics
	guard   *bus.Guard

	Pricing       *pricing.Service
	MarketData    *marketdata.Service
	AlgoExecution *execution.AlgoService
	Execution     *execution.Service
	Booking       *booking.Service
	Position      *position.Service
	Risk          *risk.Service
	AlgoStreaming *streaming.AlgoService
	Streaming     *streaming.Service
	Inquiry       *inquiry.Service
	GUI           *gui.Service

	positions    *historical.Service[string, model.Position]
	risks        *historical.Service[string, model.PV01]
	executions   *historical.Service[string, model.ExecutionOrder]
	streams      *historical.Service[string, model.PriceStream]
	inquiries    *historical.Service[string, model.Inquiry]
	bucketedRisk *historical.Service[enum.Sector, model.BucketedPV01]

	db      *conn.Client
	journal *persist.Journal
	inputs  []input
	closed  bool
}

// New builds and wires every stage from cfg.
func New(cfg ops.Loaded, opts ...Option) (*Pipeline, error) {
	if cfg.Registry == nil {
		return nil, errors.New("core: registry is nil")
	}

	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	if p.metrics == nil {
		p.metrics = obs.NewMetrics()
	}
	p.guard = bus.NewGuard(cfg.Pipeline.MaxDepth)
	p.openJournal()

	storeOpts := []bus.Option{bus.WithGuard(p.guard), bus.WithMetrics(p.metrics)}
	in := func() feed.Options {
		return feed.Options{Policy: cfg.Pipeline.OnBadRecord, Metrics: p.metrics}
	}

	var err error
	p.Pricing = pricing.NewService(cfg.Registry, in(), storeOpts...)
	p.MarketData, err = marketdata.NewService(cfg.MarketData, cfg.Registry, in(), storeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "build market data")
	}
	p.AlgoExecution = execution.NewAlgoService(p.metrics, storeOpts...)
	p.Execution = execution.NewService(p.metrics, storeOpts...)
	p.Booking, err = booking.NewService(booking.DefaultBooks(), cfg.Registry, in(), p.metrics, storeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "build booking")
	}
	p.Position = position.NewService(storeOpts...)
	p.Risk = risk.NewService(cfg.Risk, cfg.Registry, p.metrics, storeOpts...)
	p.AlgoStreaming = streaming.NewAlgoService(cfg.Features.EnableAlgoStreaming, storeOpts...)
	p.Streaming = streaming.NewService(storeOpts...)
	p.Inquiry = inquiry.NewService(cfg.Registry, in(), storeOpts...)
	p.GUI = gui.NewService(cfg.GUI.Throttle, p.writer(historical.FileGUI), p.clock, p.metrics, storeOpts...)

	p.positions = historical.NewService("positions",
		func(v model.Position) string { return v.Product.ID },
		p.writer(historical.FilePositions), p.clock, p.metrics, storeOpts...)
	p.risks = historical.NewService("risk",
		func(v model.PV01) string { return v.Product.ID },
		p.writer(historical.FileRisk), p.clock, p.metrics, storeOpts...)
	p.executions = historical.NewService("executions",
		func(v model.ExecutionOrder) string { return v.Product.ID },
		p.writer(historical.FileExecutions), p.clock, p.metrics, storeOpts...)
	p.streams = historical.NewService("streaming",
		func(v model.PriceStream) string { return v.Product.ID },
		p.writer(historical.FileStreaming), p.clock, p.metrics, storeOpts...)
	p.inquiries = historical.NewService("inquiries",
		func(v model.Inquiry) string { return v.InquiryID },
		p.writer(historical.FileInquiries), p.clock, p.metrics, storeOpts...)
	p.bucketedRisk = historical.NewService("bucketedrisk",
		func(v model.BucketedPV01) enum.Sector { return v.Sector },
		p.writer(historical.FileBucketedRisk), p.clock, p.metrics, storeOpts...)

	p.wire()
	p.inputs = []input{
		{name: FilePrices, connector: p.Pricing.Connector()},
		{name: FileMarketData, connector: p.MarketData.Connector()},
		{name: FileTrades, connector: p.Booking.Connector()},
		{name: FileInquiries, connector: p.Inquiry.Connector()},
	}

	logs.Infof("pipeline ready, run: %s, input: %s, output: %s, securities: %d", p.runID, cfg.Input, cfg.Output, cfg.Registry.Len())
	return p, nil
}

func (p *Pipeline) wire() {
	p.Pricing.AddListener(p.GUI.Listener())
	p.Pricing.AddListener(p.AlgoStreaming.Listener())
	p.AlgoStreaming.AddListener(p.Streaming.Listener())
	p.Streaming.AddListener(p.streams.Listener())

	p.MarketData.AddListener(p.AlgoExecution.Listener())
	p.AlgoExecution.AddListener(p.Execution.Listener())
	p.Execution.AddListener(p.executions.Listener())
	p.Execution.AddListener(p.Booking.Listener())

	p.Booking.AddListener(p.Position.Listener())
	p.Position.AddListener(p.Risk.Listener())
	p.Position.AddListener(p.positions.Listener())
	p.Risk.AddListener(p.risks.Listener())

	p.Inquiry.AddListener(p.inquiries.Listener())
}

// openJournal connects the optional journal. Failures leave the pipeline
// writing files only.
func (p *Pipeline) openJournal() {
	if !p.cfg.Database.Enabled() {
		return
	}
	client, err := conn.New(conn.ParseDSN(p.cfg.Database.DSN))
	if err != nil {
		logs.Errorf("journal disabled, err: %+v", err)
		return
	}
	journal, err := persist.NewJournal(client.DB(), p.runID, p.cfg.Database.BatchSize)
	if err != nil {
		logs.Errorf("journal disabled, err: %+v", err)
		_ = client.Close()
		return
	}
	p.db = client
	p.journal = journal
	logs.Infof("journal enabled, driver: %s", client.Driver())
}

func (p *Pipeline) writer(file string) historical.RecordWriter {
	fw := historical.OpenFile(historical.DefaultConfig(p.cfg.Output), file)
	if p.journal == nil {
		return fw
	}
	return historical.MultiWriter{fw, p.journal}
}

func (p *Pipeline) RunID() string {
	return p.runID
}

func (p *Pipeline) Metrics() *obs.Metrics {
	return p.metrics
}

// Run feeds every input file in order. A missing file is logged and
// skipped. The first error stops the run.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, in := range p.inputs {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "run canceled")
		}
		if err := p.feed(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) feed(ctx context.Context, in input) error {
	path := filepath.Join(p.cfg.Input, in.name)
	f, err := os.Open(path)
	if err != nil {
		logs.Errorf("skip input %s, err: %+v", path, err)
		return nil
	}
	defer f.Close()

	start := time.Now()
	if err := in.connector.Subscribe(ctx, f); err != nil {
		return errors.Wrapf(err, "feed %s", path)
	}
	logs.Infof("fed %s in %s", path, time.Since(start))
	return nil
}

// Close writes the end-of-run outputs and releases every sink. It is safe to
// call more than once.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	for _, sector := range enum.Sectors() {
		keep(p.bucketedRisk.PersistData(p.Risk.BucketedRisk(sector)))
	}

	keep(p.GUI.Close())
	keep(p.positions.Close())
	keep(p.risks.Close())
	keep(p.executions.Close())
	keep(p.streams.Close())
	keep(p.inquiries.Close())
	keep(p.bucketedRisk.Close())
	if p.db != nil {
		keep(p.db.Close())
	}

	if path := p.cfg.SnapshotPath; path != "" {
		keep(position.WriteSnapshot(path, p.Position.Snapshot(p.clock())))
	}
	keep(p.metrics.WriteTextfile(p.cfg.MetricsTextfile))

	if first != nil {
		logs.Errorf("pipeline closed with errors, run: %s, err: %+v", p.runID, first)
		return first
	}
	logs.Infof("pipeline closed, run: %s", p.runID)
	return nil
}
