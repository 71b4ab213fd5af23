/*
DESCRIPTION
  dabmux is the multiplexer process entry point: it loads an ensemble
  YAML document, wires the configured ETI/EDI outputs, and drives the
  24ms tick loop until interrupted.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dabmux is the multiplexer's command-line entry point: load an
// ensemble, start the tick loop, and run until signalled to stop.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/dabmux/ensemble"
	"github.com/ausocean/dabmux/mux"
	"github.com/ausocean/dabmux/mux/config"
	"github.com/ausocean/utils/logging"
)

// Logging configuration, sized the way cmd/rv and cmd/looper size theirs.
const (
	logPath      = "/var/log/dabmux/dabmux.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
)

func main() {
	ensemblePath := flag.String("ensemble", "", "path to the ensemble YAML document")
	tickMS := flag.Uint("tick-ms", 24, "ETI frame tick interval in milliseconds")
	burst := flag.Bool("burst", false, "run for -burst-period seconds then exit")
	burstPeriod := flag.Uint("burst-period", 10, "burst duration in seconds")
	verbosity := flag.Int("verbosity", int(logging.Info), "log verbosity (0 Debug .. 4 Fatal)")
	etiFramedPath := flag.String("eti-framed-file", "", "write a framed ETI byte sink to this path")
	etiStreamedPath := flag.String("eti-streamed-file", "", "write a streamed ETI byte sink to this path")
	etiRawPath := flag.String("eti-raw-file", "", "write a raw (6144-byte padded) ETI byte sink to this path")
	ediAddr := flag.String("edi-addr", "", "EDI UDP destination host:port; empty disables EDI output")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	const version = "v0.1.0"
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*verbosity), io.MultiWriter(fileLog, os.Stderr), false)

	log.Info("starting dabmux", "version", version)

	if *ensemblePath == "" {
		log.Fatal("dabmux: -ensemble is required")
	}
	ens, err := ensemble.Load(*ensemblePath)
	if err != nil {
		log.Fatal("dabmux: could not load ensemble", "error", err.Error())
	}
	if err := ens.Validate(); err != nil {
		log.Fatal("dabmux: invalid ensemble", "error", err.Error())
	}
	log.Info("loaded ensemble", "path", *ensemblePath, "eid", ens.EId)

	cfg := config.Config{
		EnsemblePath:   *ensemblePath,
		TickIntervalMS: *tickMS,
		BurstPeriod:    *burstPeriod,
		Logger:         log,
		LogLevel:       int8(*verbosity),
	}
	cfg.ETISinks = buildSinks(*etiFramedPath, *etiStreamedPath, *etiRawPath)
	if *ediAddr != "" {
		cfg.EDI = config.EDIConfig{
			Enabled:   true,
			Transport: config.EDIUDP,
			Address:   *ediAddr,
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("dabmux: invalid config", "error", err.Error())
	}

	m, err := mux.New(cfg, ens)
	if err != nil {
		log.Fatal("dabmux: could not build multiplexer", "error", err.Error())
	}

	if *burst {
		log.Info("running burst", "seconds", *burstPeriod)
		if err := m.Burst(); err != nil {
			log.Fatal("dabmux: burst failed", "error", err.Error())
		}
		return
	}

	if err := m.Start(); err != nil {
		log.Fatal("dabmux: could not start", "error", err.Error())
	}
	log.Info("multiplexer running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("stopping multiplexer")
	m.Stop()
	time.Sleep(10 * time.Millisecond)
}

// buildSinks translates the CLI's ETI sink flags into the sink list
// mux.New expects; an empty path skips that sink kind.
func buildSinks(framed, streamed, raw string) []config.ETISink {
	var sinks []config.ETISink
	if framed != "" {
		sinks = append(sinks, config.ETISink{Kind: config.SinkFramedFile, Path: framed})
	}
	if streamed != "" {
		sinks = append(sinks, config.ETISink{Kind: config.SinkStreamedFile, Path: streamed})
	}
	if raw != "" {
		sinks = append(sinks, config.ETISink{Kind: config.SinkRawFile, Path: raw})
	}
	return sinks
}
