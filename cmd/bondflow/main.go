package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"bondflow/internal/core"
	"bondflow/internal/ops"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("bondflow: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "Path to JSON or YAML config (optional)")
	inputFlag := flag.String("input", "", "Input directory, overrides config")
	outputFlag := flag.String("output", "", "Output directory, overrides config")
	pyroscopeFlag := flag.String("pyroscope", "", "Pyroscope server address, profiling is off when empty")
	flag.Parse()

	cfg, err := ops.Load(strings.TrimSpace(*configFlag))
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if v := strings.TrimSpace(*inputFlag); v != "" {
		cfg.Input = v
	}
	if v := strings.TrimSpace(*outputFlag); v != "" {
		cfg.Output = v
	}

	runID := uuid.NewString()
	if addr := strings.TrimSpace(*pyroscopeFlag); addr != "" {
		profiler, err := startProfiler(addr, runID)
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown requested")
			cancel()
		case <-ctx.Done():
		}
	}()

	pipeline, err := core.New(cfg, core.WithRunID(runID))
	if err != nil {
		return err
	}
	runErr := pipeline.Run(ctx)
	closeErr := pipeline.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func startProfiler(addr, runID string) (*pyroscope.Profiler, error) {
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "bondflow",
		ServerAddress:   addr,
		Tags: map[string]string{
			"run": runID,
		},
		Logger: profilerLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "start pyroscope")
	}
	return profiler, nil
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...any)  { logs.Infof(format, args...) }
func (profilerLogger) Debugf(string, ...any)             {}
func (profilerLogger) Errorf(format string, args ...any) { logs.Errorf(format, args...) }
