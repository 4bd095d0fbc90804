// Copyright 2026 The SampleGuard Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command hardware-demo runs both emulated vendor readers end to end:
// initialize, seed encrypted sample tags, inventory, addressed reads with
// decryption and validation, then a dump of the driver's event log.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	rfid "github.com/sampleguard/go-rfid"
	"github.com/sampleguard/go-rfid/hardware"
)

type config struct {
	KeyMaterial string `toml:"key_material"`
	ScanMS      int    `toml:"scan_ms"`
	MaxReads    uint64 `toml:"max_reads"`
}

// Package-level flag variables
var (
	flagConfigPath string
	flagScanMS     int
	flagDebug      bool
)

func init() {
	flag.StringVar(&flagConfigPath, "config", "", "Path to a TOML config file (optional)")
	flag.IntVar(&flagScanMS, "scan-ms", 500, "Inventory scan window in milliseconds")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

func loadConfig() (*config, error) {
	cfg := &config{
		KeyMaterial: "demo-secret-key",
		ScanMS:      flagScanMS,
		MaxReads:    1000,
	}
	if flagConfigPath != "" {
		if _, err := toml.DecodeFile(flagConfigPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", flagConfigPath, err)
		}
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if flagDebug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	codec := rfid.NewCodec([]byte(cfg.KeyMaterial))
	validator := &rfid.Validator{MaxReadCount: cfg.MaxReads}

	driverCfg := hardware.DefaultDriverConfig()
	driverCfg.ScanWindow = time.Duration(cfg.ScanMS) * time.Millisecond
	driver := hardware.NewDriver(driverCfg)
	driver.SetLogger(log)

	fmt.Println("=== Initializing readers ===")
	if err := driver.InitializeAll(); err != nil {
		return fmt.Errorf("reader initialization failed: %w", err)
	}

	epcs, err := driver.SetupDemoTags(codec)
	if err != nil {
		return fmt.Errorf("failed to seed demo tags: %w", err)
	}
	fmt.Printf("Seeded %d encrypted sample tags\n", len(epcs))

	fmt.Println("\n=== Reader configurations ===")
	for _, name := range []string{"speedway", "fx9600"} {
		doc, err := driver.ReaderConfigFor(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", name, doc)
	}

	fmt.Println("\n=== Inventory scan ===")
	found, err := driver.PerformInventoryScan()
	if err != nil {
		return fmt.Errorf("inventory scan failed: %w", err)
	}
	fmt.Printf("Detected %d unique tags\n", len(found))

	fmt.Println("\n=== Reading and validating samples ===")
	for _, epc := range found {
		if err := readAndValidate(driver, codec, validator, epc); err != nil {
			log.Warn().Str("epc", epc).Err(err).Msg("sample read failed")
		}
	}

	fmt.Println("\n=== Event log ===")
	for _, ev := range driver.Events() {
		line := fmt.Sprintf("[%s] %-21s reader=%s", ev.Timestamp.Format(time.TimeOnly), ev.Type, ev.Reader)
		if ev.EPC != "" {
			line += " epc=" + ev.EPC
		}
		if ev.Err != "" {
			line += " error=" + ev.Err
		}
		fmt.Println(line)
	}
	return nil
}

// readAndValidate pulls one tag through the Speedway path, decodes the
// sample record, and prints its validation report. Transient RF faults are
// retried with short backoff.
func readAndValidate(driver *hardware.Driver, codec *rfid.Codec, validator *rfid.Validator, epc string) error {
	var raw []byte
	err := rfid.Retry(context.Background(), rfid.DefaultRetryConfig(), func() error {
		var readErr error
		raw, readErr = driver.ReadTagSpeedway(epc)
		return readErr
	})
	if err != nil {
		return err
	}

	tag, err := rfid.UnmarshalTag(raw)
	if err != nil {
		return err
	}
	sample, err := rfid.SampleFromTag(tag, codec)
	if err != nil {
		return err
	}

	result := validator.Validate(sample)
	fmt.Printf("%s: sample=%s status=%s batch=%s valid=%v\n",
		epc, sample.SampleID, sample.Status, sample.Metadata.BatchNumber, result.Valid)
	for _, v := range result.Violations {
		fmt.Printf("  violation: %s\n", v)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}
