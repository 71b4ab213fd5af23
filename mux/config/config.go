/*
NAME
  config.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for a multiplexer
// instance: the ensemble source, ETI byte sinks, EDI output, and the
// Variables table remote control updates go through.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Enums defining ETI sink kinds and EDI transport kinds.
const (
	NothingDefined = iota

	// ETI sink kinds.
	SinkFramedFile
	SinkStreamedFile
	SinkRawFile

	// EDI transport kinds.
	EDIUDP
	EDITCPClient
	EDITCPServer
)

// ETISink describes one configured ETI byte sink.
type ETISink struct {
	Kind uint8
	Path string
}

// EDIConfig describes the EDI output, if enabled.
type EDIConfig struct {
	Enabled    bool
	Transport  uint8
	Address    string // host:port for all transport kinds.
	SourceAddr string // optional local bind address for UDP.
	Retries    int    // TCP-client dial retries.

	PFT             bool
	FEC             bool
	FECChunks       int // parity shard count when FEC is enabled.
	MaxFragmentSize int
}

// Config provides parameters relevant to a multiplexer instance. A new
// config must be passed to the constructor. Default values for these
// fields are defined as consts in variables.go.
type Config struct {
	// EnsemblePath is the YAML ensemble document to load at start.
	EnsemblePath string

	// TickIntervalMS is the nominal ETI frame period; every real DAB
	// transmission uses 24ms, but tests and burst tools may override it.
	TickIntervalMS uint

	// BurstPeriod defines the multiplexer's burst period in seconds.
	BurstPeriod uint

	// ETISinks are the configured ETI byte sinks, fanned out to every tick.
	ETISinks []ETISink

	// EDI configures the optional EDI encoder and transport output.
	EDI EDIConfig

	// Logger holds an implementation of the Logger interface defined in
	// mux.go. This must be set for the multiplexer to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	Suppress bool // Holds logger suppression state.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converts into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
