/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and Update).

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
	"fmt"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:         dl,
		EnsemblePath:   "/ensemble.yaml",
		TickIntervalMS: defaultTickIntervalMS,
		BurstPeriod:    defaultBurstPeriod,
		LogLevel:       defaultVerbosity,
	}

	got := Config{Logger: dl, EnsemblePath: "/ensemble.yaml"}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"EnsemblePath":   "/other.yaml",
		"TickIntervalMS": "24",
		"BurstPeriod":    "30",
		"logging":        fmt.Sprintf("%d", logging.Error),
		"Suppress":       "true",
		"EDIEnabled":     "true",
		"EDIAddress":     "239.1.1.1:12000",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:         dl,
		EnsemblePath:   "/other.yaml",
		TickIntervalMS: 24,
		BurstPeriod:    30,
		LogLevel:       logging.Error,
		Suppress:       true,
	}
	want.EDI.Enabled = true
	want.EDI.Address = "239.1.1.1:12000"

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}
