// go-uib
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-uib.
//
// go-uib is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-uib is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-uib; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Command uibsim plays the UI Board side of the link: it writes a telemetry
// frame to a serial port at a fixed interval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	uib "github.com/ZaparooProject/go-uib"
	"github.com/ZaparooProject/go-uib/internal/config"
	"github.com/ZaparooProject/go-uib/transport/uart"
)

type flags struct {
	devicePath *string
	configPath *string
	interval   *time.Duration
	count      *int
	debug      *bool
}

func parseFlags() *flags {
	f := &flags{
		devicePath: flag.String("device", "", "Serial device path to write to (e.g., /dev/ttyUSB0 or COM3)"),
		configPath: flag.String("config", "", "YAML config file"),
		interval:   flag.Duration("interval", time.Second, "Time between frames"),
		count:      flag.Int("count", 0, "Number of frames to send, 0 for no limit"),
		debug:      flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()
	return f
}

func loadConfig(f *flags) (*config.Config, error) {
	cfg := config.Default()
	if *f.configPath != "" {
		loaded, err := config.Load(*f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "device":
			cfg.Serial = *f.devicePath
		case "interval":
			cfg.Interval = *f.interval
		case "debug":
			cfg.Debug = *f.debug
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Serial == "" {
		return nil, errors.New("no serial device: pass -device or set serial in the config")
	}
	return cfg, nil
}

// simulator walks a position around a fixed start point
type simulator struct {
	rng       *rand.Rand
	latitude  int64
	longitude int64
	heading   int64
}

func newSimulator(seed int64) *simulator {
	return &simulator{
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // simulated data
		latitude:  332_030_176,
		longitude: -1_165_082_935,
	}
}

func (s *simulator) next(now time.Time) uib.TelemetryFields {
	s.latitude += s.rng.Int63n(2001) - 1000
	s.longitude += s.rng.Int63n(2001) - 1000
	s.heading = ((s.heading+s.rng.Int63n(21)-10+180)%360+360)%360 - 180

	return uib.TelemetryFields{
		Time:      uint64(now.UnixMilli()), //nolint:gosec // after 1970
		Latitude:  s.latitude,
		Longitude: s.longitude,
		Altitude:  12_000 + s.rng.Int63n(400),
		Heading:   s.heading,
		Voltage:   4_800 + s.rng.Int63n(200),
		FixType:   1 + s.rng.Int63n(3),
	}
}

func send(ctx context.Context, board *uib.Board, cfg *config.Config, count int) error {
	sim := newSimulator(time.Now().UnixNano())
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for sent := 0; count == 0 || sent < count; sent++ {
		fields := sim.next(time.Now())
		if err := board.SendTelemetry(fields); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
		_, _ = fmt.Printf("sent #%d lat=%d lon=%d hdg=%d\n", sent+1, fields.Latitude, fields.Longitude, fields.Heading)

		if count != 0 && sent+1 == count {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func run() int {
	f := parseFlags()
	cfg, err := loadConfig(f)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if cfg.Debug {
		uib.SetDebugEnabled(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := uart.New(cfg.Serial, uart.WithBaudRate(cfg.BaudRate))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to create UART transport: %v\n", err)
		return 1
	}

	board, err := uib.NewBoard(transport, uib.WithRetryConfig(uib.DefaultRetryConfig()))
	if err != nil {
		_ = transport.Close()
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer func() { _ = board.Close() }()

	_, _ = fmt.Printf("Sending telemetry to %s every %s\n", cfg.Serial, cfg.Interval)
	if err := send(ctx, board, cfg, *f.count); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	stats := board.Stats()
	_, _ = fmt.Printf("frames=%d bytes=%d\n", stats.FramesSent, stats.BytesWritten)
	return 0
}

func main() {
	os.Exit(run())
}
