package ops

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"bondflow/internal/bus"
	"bondflow/internal/feed"
	"bondflow/internal/gui"
	"bondflow/internal/marketdata"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/internal/refdata"
	"bondflow/internal/risk"
	"bondflow/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInputDir  = "data"
	DefaultOutputDir = "output"
	dateLayout       = "2006-01-02"
)

// FileConfig mirrors the JSON or YAML config layout.
type FileConfig struct {
	Input      string             `json:"input" yaml:"input"`
	Output     string             `json:"output" yaml:"output"`
	Registry   RegistryConfig     `json:"registry" yaml:"registry"`
	MarketData MarketDataConfig   `json:"marketData" yaml:"marketData"`
	Pipeline   PipelineConfig     `json:"pipeline" yaml:"pipeline"`
	Features   FeatureFlagsConfig `json:"features" yaml:"features"`
	GUI        GUIConfig          `json:"gui" yaml:"gui"`
	Risk       RiskConfig         `json:"risk" yaml:"risk"`
	Database   DatabaseConfig     `json:"database" yaml:"database"`
	Metrics    MetricsConfig      `json:"metrics" yaml:"metrics"`
	Snapshot   SnapshotConfig     `json:"snapshot" yaml:"snapshot"`
}

// RegistryConfig replaces the default securities when not empty.
type RegistryConfig struct {
	Securities []SecurityConfig `json:"securities" yaml:"securities"`
}

// SecurityConfig describes a security entry. Decimals and dates are strings.
type SecurityConfig struct {
	ID         string `json:"id" yaml:"id"`
	Ticker     string `json:"ticker" yaml:"ticker"`
	Tenor      int    `json:"tenor" yaml:"tenor"`
	Coupon     string `json:"coupon" yaml:"coupon"`
	Maturity   string `json:"maturity" yaml:"maturity"`
	PV01Factor string `json:"pv01Factor" yaml:"pv01Factor"`
}

type MarketDataConfig struct {
	BookDepth        int    `json:"bookDepth" yaml:"bookDepth"`
	OfferAggregation string `json:"offerAggregation" yaml:"offerAggregation"`
}

type PipelineConfig struct {
	OnBadRecord string `json:"onBadRecord" yaml:"onBadRecord"`
	MaxDepth    int    `json:"maxDepth" yaml:"maxDepth"`
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	EnableAlgoStreaming *bool `json:"enableAlgoStreaming" yaml:"enableAlgoStreaming"`
}

type GUIConfig struct {
	Throttle string `json:"throttle" yaml:"throttle"`
}

type RiskConfig struct {
	MaxAggregatePV01 string `json:"maxAggregatePv01" yaml:"maxAggregatePv01"`
}

type DatabaseConfig struct {
	DSN       string `json:"dsn" yaml:"dsn"`
	BatchSize int    `json:"batchSize" yaml:"batchSize"`
}

type MetricsConfig struct {
	Textfile string `json:"textfile" yaml:"textfile"`
}

type SnapshotConfig struct {
	Path string `json:"path" yaml:"path"`
}

// EnvConfig holds the environment overrides. Empty or unset values keep the
// file config.
type EnvConfig struct {
	InputDir            string `env:"BONDFLOW_INPUT_DIR"`
	OutputDir           string `env:"BONDFLOW_OUTPUT_DIR"`
	OnBadRecord         string `env:"BONDFLOW_ON_BAD_RECORD"`
	DatabaseDSN         string `env:"BONDFLOW_DATABASE_DSN"`
	EnableAlgoStreaming *bool  `env:"BONDFLOW_ENABLE_ALGO_STREAMING"`
	MetricsTextfile     string `env:"BONDFLOW_METRICS_TEXTFILE"`
	SnapshotPath        string `env:"BONDFLOW_SNAPSHOT_PATH"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	EnableAlgoStreaming bool
}

type PipelineSettings struct {
	OnBadRecord feed.Policy
	MaxDepth    int
}

type GUISettings struct {
	Throttle time.Duration
}

// DatabaseSettings enables the journal when DSN is set.
type DatabaseSettings struct {
	DSN       string
	BatchSize int
}

func (d DatabaseSettings) Enabled() bool {
	return d.DSN != ""
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Input      string
	Output     string
	Registry   *refdata.Registry
	MarketData marketdata.Config
	Pipeline   PipelineSettings
	Features   FeatureFlags
	GUI        GUISettings
	Risk       risk.Config
	Database   DatabaseSettings
	// MetricsTextfile and SnapshotPath are written on close when set.
	MetricsTextfile string
	SnapshotPath    string
}

// Default resolves an empty config.
func Default() Loaded {
	loaded, err := Resolve(FileConfig{})
	if err != nil {
		panic(err)
	}
	return loaded
}

// Load reads the optional config file at path, applies .env files and
// environment overrides, then resolves everything. Without dotenvs a ".env"
// in the working directory is used when present.
func Load(path string, dotenvs ...string) (Loaded, error) {
	if err := loadDotEnv(dotenvs); err != nil {
		return Loaded{}, err
	}

	var cfg FileConfig
	if path != "" {
		fc, err := ReadFile(path)
		if err != nil {
			return Loaded{}, err
		}
		cfg = fc
	}

	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return Loaded{}, errors.Wrapf(exception.ErrInvalidArgument, "parse env: %v", err)
	}
	applyEnv(&cfg, ec)
	return Resolve(cfg)
}

// ReadFile decodes a config file, YAML for .yaml/.yml and JSON otherwise.
func ReadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, errors.Wrapf(err, "read config %s", path)
	}
	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = sonic.Unmarshal(data, &cfg)
	}
	if err != nil {
		return FileConfig{}, errors.Wrapf(err, "decode config %s", path)
	}
	return cfg, nil
}

func loadDotEnv(paths []string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		return errors.Wrap(err, "load .env")
	}
	return nil
}

func applyEnv(cfg *FileConfig, ec EnvConfig) {
	if ec.InputDir != "" {
		cfg.Input = ec.InputDir
	}
	if ec.OutputDir != "" {
		cfg.Output = ec.OutputDir
	}
	if ec.OnBadRecord != "" {
		cfg.Pipeline.OnBadRecord = ec.OnBadRecord
	}
	if ec.DatabaseDSN != "" {
		cfg.Database.DSN = ec.DatabaseDSN
	}
	if ec.EnableAlgoStreaming != nil {
		cfg.Features.EnableAlgoStreaming = ec.EnableAlgoStreaming
	}
	if ec.MetricsTextfile != "" {
		cfg.Metrics.Textfile = ec.MetricsTextfile
	}
	if ec.SnapshotPath != "" {
		cfg.Snapshot.Path = ec.SnapshotPath
	}
}

// Resolve validates cfg and fills defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	registry, err := buildRegistry(cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}
	md, err := resolveMarketData(cfg.MarketData)
	if err != nil {
		return Loaded{}, err
	}
	pipeline, err := resolvePipeline(cfg.Pipeline)
	if err != nil {
		return Loaded{}, err
	}
	g, err := resolveGUI(cfg.GUI)
	if err != nil {
		return Loaded{}, err
	}
	rc, err := resolveRisk(cfg.Risk)
	if err != nil {
		return Loaded{}, err
	}
	if cfg.Database.BatchSize < 0 {
		return Loaded{}, errors.Wrap(exception.ErrInvalidArgument, "database batchSize must be >= 0")
	}

	input, output := cfg.Input, cfg.Output
	if input == "" {
		input = DefaultInputDir
	}
	if output == "" {
		output = DefaultOutputDir
	}
	return Loaded{
		Input:           input,
		Output:          output,
		Registry:        registry,
		MarketData:      md,
		Pipeline:        pipeline,
		Features:        resolveFeatures(cfg.Features),
		GUI:             g,
		Risk:            rc,
		Database:        DatabaseSettings{DSN: cfg.Database.DSN, BatchSize: cfg.Database.BatchSize},
		MetricsTextfile: cfg.Metrics.Textfile,
		SnapshotPath:    cfg.Snapshot.Path,
	}, nil
}

func buildRegistry(cfg RegistryConfig) (*refdata.Registry, error) {
	if len(cfg.Securities) == 0 {
		return refdata.Default(), nil
	}
	reg := refdata.NewRegistry()
	for _, sc := range cfg.Securities {
		sec, err := resolveSecurity(sc)
		if err != nil {
			return nil, err
		}
		if err := reg.AddSecurity(sec); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func resolveSecurity(sc SecurityConfig) (refdata.Security, error) {
	coupon, err := parseDecimal(sc.Coupon)
	if err != nil {
		return refdata.Security{}, errors.Wrapf(err, "security %s coupon", sc.ID)
	}
	factor, err := parseDecimal(sc.PV01Factor)
	if err != nil {
		return refdata.Security{}, errors.Wrapf(err, "security %s pv01Factor", sc.ID)
	}
	var maturity time.Time
	if sc.Maturity != "" {
		maturity, err = time.Parse(dateLayout, sc.Maturity)
		if err != nil {
			return refdata.Security{}, errors.Wrapf(exception.ErrInvalidArgument, "security %s maturity %q", sc.ID, sc.Maturity)
		}
	}
	ticker := sc.Ticker
	if ticker == "" && sc.Tenor > 0 {
		ticker = refdata.Ticker(sc.Tenor)
	}
	return refdata.Security{
		Product: model.Product{
			ID:       sc.ID,
			Type:     enum.ProductTypeBond,
			Ticker:   ticker,
			Tenor:    sc.Tenor,
			Coupon:   coupon,
			Maturity: maturity,
		},
		PV01Factor: factor,
	}, nil
}

func resolveMarketData(cfg MarketDataConfig) (marketdata.Config, error) {
	agg, err := marketdata.ParseAggregation(cfg.OfferAggregation)
	if err != nil {
		return marketdata.Config{}, err
	}
	md := marketdata.DefaultConfig()
	md.OfferAggregation = agg
	if cfg.BookDepth != 0 {
		md.BookDepth = cfg.BookDepth
	}
	if err := md.Validate(); err != nil {
		return marketdata.Config{}, err
	}
	return md, nil
}

func resolvePipeline(cfg PipelineConfig) (PipelineSettings, error) {
	policy, err := feed.ParsePolicy(cfg.OnBadRecord)
	if err != nil {
		return PipelineSettings{}, err
	}
	depth := cfg.MaxDepth
	if depth < 0 {
		return PipelineSettings{}, errors.Wrap(exception.ErrInvalidArgument, "pipeline maxDepth must be >= 0")
	}
	if depth == 0 {
		depth = bus.DefaultMaxDepth
	}
	return PipelineSettings{OnBadRecord: policy, MaxDepth: depth}, nil
}

func resolveGUI(cfg GUIConfig) (GUISettings, error) {
	if cfg.Throttle == "" {
		return GUISettings{Throttle: gui.DefaultThrottle}, nil
	}
	d, err := time.ParseDuration(cfg.Throttle)
	if err != nil || d <= 0 {
		return GUISettings{}, errors.Wrapf(exception.ErrInvalidArgument, "gui throttle %q", cfg.Throttle)
	}
	return GUISettings{Throttle: d}, nil
}

func resolveRisk(cfg RiskConfig) (risk.Config, error) {
	limit, err := parseDecimal(cfg.MaxAggregatePV01)
	if err != nil {
		return risk.Config{}, errors.Wrap(err, "risk maxAggregatePv01")
	}
	if limit.IsNegative() {
		return risk.Config{}, errors.Wrap(exception.ErrInvalidArgument, "risk maxAggregatePv01 must be >= 0")
	}
	return risk.Config{MaxAggregatePV01: limit}, nil
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{
		EnableAlgoStreaming: false,
	}
	if cfg.EnableAlgoStreaming != nil {
		flags.EnableAlgoStreaming = *cfg.EnableAlgoStreaming
	}
	return flags
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(exception.ErrInvalidArgument, "invalid decimal %q", s)
	}
	return d, nil
}
