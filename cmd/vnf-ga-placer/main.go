// Command vnf-ga-placer runs the genetic-algorithm VNF service-chain
// placement searcher described by the external-interfaces contract: a
// positional input file, a required INI config, and a JSON result file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/oran-mano/vnf-ga-placer/internal/config"
	"github.com/oran-mano/vnf-ga-placer/internal/inputfile"
	"github.com/oran-mano/vnf-ga-placer/internal/output"
	"github.com/oran-mano/vnf-ga-placer/internal/search"
	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

const usage = `vnf-ga-placer: genetic-algorithm VNF service-chain placement searcher

Usage:
  vnf-ga-placer [options] INPUT_FILE

Required arguments:
  INPUT_FILE          whitespace-delimited topology/request description
  --config FILE        INI configuration (Fitness_Function_Settings,
                        Operator_Settings, General_Settings)
  --output FILE         JSON result destination

Optional arguments:
  --log FILE            enable info-level logging to FILE
  --track-fitness FILE  write one "generation,best_fitness" CSV row per
                        generation
  --help                show this message and exit
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("vnf-ga-placer", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	configPath := fs.String("config", "", "INI configuration file (required)")
	outputPath := fs.String("output", "", "JSON result file (required)")
	logPath := fs.String("log", "", "enable info-level logging to this file")
	trackFitnessPath := fs.String("track-fitness", "", "write per-generation best-fitness CSV to this file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one positional INPUT_FILE argument is required")
		fs.Usage()
		return 2
	}
	inputPath := fs.Arg(0)

	if *configPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "--config and --output are required")
		fs.Usage()
		return 2
	}

	logger := newLogger(*logPath)

	ctx, cancel := signalContext()
	defer cancel()

	done := make(chan int, 1)
	go func() { done <- runSearch(inputPath, *configPath, *outputPath, *trackFitnessPath, logger) }()

	select {
	case code := <-done:
		return code
	case <-ctx.done:
		logger.Warn("shutdown signal received, exiting without writing output")
		return 130
	}
}

func runSearch(inputPath, configPath, outputPath, trackFitnessPath string, logger *logrus.Entry) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		return reportFatal(logger, err)
	}
	logger.WithField("config", configPath).Info("configuration loaded")

	raw, err := inputfile.Parse(inputPath)
	if err != nil {
		return reportFatal(logger, err)
	}
	built, err := inputfile.Build(raw)
	if err != nil {
		return reportFatal(logger, err)
	}
	logger.WithFields(logrus.Fields{
		"num_nodes":    built.Topology.NumNodes(),
		"num_requests": len(built.Groups),
	}).Info("input parsed")

	registry := prometheus.NewRegistry()
	metrics := search.NewMetrics(registry)

	runner, err := search.NewRunner(built, cfg, logger, metrics)
	if err != nil {
		return reportFatal(logger, err)
	}
	runner.TrackFitnessPath = trackFitnessPath

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	snap, ok, err := runner.Run(rng, cfg.InitialPopulationFilePath)
	if err != nil {
		return reportFatal(logger, err)
	}

	if !ok {
		logger.Warn("no valid placement found")
		if err := output.WriteEmpty(outputPath); err != nil {
			return reportFatal(logger, err)
		}
		return 0
	}

	mainCount, alt, total := snap.AcceptedCounts()
	logger.WithFields(logrus.Fields{
		"accepted_main": mainCount,
		"accepted_alt":  alt,
		"accepted":      total,
		"profit":        snap.Profit(),
	}).Info("search complete")

	if err := output.WriteResult(outputPath, snap); err != nil {
		return reportFatal(logger, err)
	}
	return 0
}

func reportFatal(logger *logrus.Entry, err error) int {
	var cfgErr *vnferrors.ConfigError
	var parseErr *vnferrors.ParseError
	var usageErr *vnferrors.UsageError
	var invErr *vnferrors.InvariantError

	switch {
	case errors.As(err, &cfgErr):
		logger.WithError(err).Error("configuration error")
	case errors.As(err, &parseErr):
		logger.WithError(err).Error("input parse error")
	case errors.As(err, &usageErr):
		logger.WithError(err).Error("usage error")
	case errors.As(err, &invErr):
		logger.WithError(err).Error("internal invariant violated")
	default:
		logger.WithError(err).Error("unexpected error")
	}
	return 1
}

func newLogger(logPath string) *logrus.Entry {
	base := logrus.New()
	if logPath == "" {
		base.SetOutput(io.Discard)
		return logrus.NewEntry(base)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", logPath, err)
		base.SetOutput(io.Discard)
		return logrus.NewEntry(base)
	}
	base.SetOutput(f)
	base.SetLevel(logrus.InfoLevel)
	if isTerminal(f) {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{})
	}
	return logrus.NewEntry(base)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

type shutdownCtx struct {
	done <-chan struct{}
}

func signalContext() (shutdownCtx, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-ch
		close(done)
	}()
	return shutdownCtx{done: done}, func() { signal.Stop(ch) }
}
