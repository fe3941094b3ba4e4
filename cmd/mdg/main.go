package main

import (
	"flag"
	"os"

	"bondflow/internal/mdg"
	"bondflow/internal/ops"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("mdg: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	def := mdg.DefaultConfig()
	configPath := flag.String("config", "", "Path to JSON or YAML config, its registry and input dir are used")
	outDir := flag.String("out", "", "Directory to write the input files to, defaults to the config input dir")
	seed := flag.Uint64("seed", def.Seed, "Random seed")
	prices := flag.Int("prices", def.Prices, "Price records per security")
	books := flag.Int("books", def.Books, "Order book updates per security")
	levels := flag.Int("levels", def.Levels, "Levels per order book update")
	trades := flag.Int("trades", def.Trades, "Trades per security")
	inquiries := flag.Int("inquiries", def.Inquiries, "Inquiries per security")
	flag.Parse()

	cfg, err := ops.Load(*configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	dir := *outDir
	if dir == "" {
		dir = cfg.Input
	}

	generator, err := mdg.NewGenerator(cfg.Registry, mdg.Config{
		Seed:      *seed,
		Prices:    *prices,
		Books:     *books,
		Levels:    *levels,
		Trades:    *trades,
		Inquiries: *inquiries,
	})
	if err != nil {
		return errors.Wrap(err, "generator init")
	}
	if err := generator.WriteAll(dir); err != nil {
		return err
	}
	logs.Infof("generated inputs for %d securities in %s", cfg.Registry.Len(), dir)
	return nil
}
