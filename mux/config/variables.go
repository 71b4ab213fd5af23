/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"strconv"

	"github.com/ausocean/utils/logging"
)

// Config map Keys. These double as the variable names Config.Update
// accepts; the remote-control set_log_level command uses KeyLogging.
const (
	KeyEnsemblePath   = "EnsemblePath"
	KeyTickIntervalMS = "TickIntervalMS"
	KeyBurstPeriod    = "BurstPeriod"
	KeyLogging        = "logging"
	KeySuppress       = "Suppress"
	KeyEDIAddress     = "EDIAddress"
	KeyEDIEnabled     = "EDIEnabled"
)

// Config map parameter types.
const (
	typeString = "string"
	typeInt    = "int"
	typeUint   = "uint"
	typeBool   = "bool"
)

// Default variable values.
const (
	defaultTickIntervalMS = 24
	defaultBurstPeriod    = 10 // Seconds.
	defaultVerbosity      = logging.Error
)

// Variables lists every field a Config.Update call may
// touch, each with a string type tag, an Update parser and an optional
// Validate defaulting function.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name: KeyEnsemblePath,
		Type: typeString,
		Update: func(c *Config, v string) {
			c.Logger.Debug("updating ensemble path", "path", v)
			c.EnsemblePath = v
		},
		Validate: func(c *Config) {
			if c.EnsemblePath == "" {
				c.LogInvalidField(KeyEnsemblePath, "")
			}
		},
	},
	{
		Name: KeyTickIntervalMS,
		Type: typeUint,
		Update: func(c *Config, v string) {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				c.Logger.Error("bad TickIntervalMS", "value", v, "error", err.Error())
				return
			}
			c.TickIntervalMS = uint(n)
		},
		Validate: func(c *Config) {
			if c.TickIntervalMS == 0 {
				c.TickIntervalMS = defaultTickIntervalMS
				c.LogInvalidField(KeyTickIntervalMS, defaultTickIntervalMS)
			}
		},
	},
	{
		Name: KeyBurstPeriod,
		Type: typeUint,
		Update: func(c *Config, v string) {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				c.Logger.Error("bad BurstPeriod", "value", v, "error", err.Error())
				return
			}
			c.BurstPeriod = uint(n)
		},
		Validate: func(c *Config) {
			if c.BurstPeriod == 0 {
				c.BurstPeriod = defaultBurstPeriod
				c.LogInvalidField(KeyBurstPeriod, defaultBurstPeriod)
			}
		},
	},
	{
		Name: KeyLogging,
		Type: typeInt,
		Update: func(c *Config, v string) {
			n, err := strconv.ParseInt(v, 10, 8)
			if err != nil {
				c.Logger.Error("bad log level", "value", v, "error", err.Error())
				return
			}
			c.LogLevel = int8(n)
			c.Logger.SetLevel(c.LogLevel)
		},
		Validate: func(c *Config) {
			if c.LogLevel == 0 {
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name: KeySuppress,
		Type: typeBool,
		Update: func(c *Config, v string) {
			b, err := strconv.ParseBool(v)
			if err != nil {
				c.Logger.Error("bad Suppress", "value", v, "error", err.Error())
				return
			}
			c.Suppress = b
		},
	},
	{
		Name: KeyEDIEnabled,
		Type: typeBool,
		Update: func(c *Config, v string) {
			b, err := strconv.ParseBool(v)
			if err != nil {
				c.Logger.Error("bad EDIEnabled", "value", v, "error", err.Error())
				return
			}
			c.EDI.Enabled = b
		},
	},
	{
		Name: KeyEDIAddress,
		Type: typeString,
		Update: func(c *Config, v string) {
			c.EDI.Address = v
		},
	},
}
