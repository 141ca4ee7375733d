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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uib "github.com/ZaparooProject/go-uib"
	"github.com/ZaparooProject/go-uib/detection"
	// Import detectors to register them
	_ "github.com/ZaparooProject/go-uib/detection/uart"
	"github.com/ZaparooProject/go-uib/internal/config"
	"github.com/ZaparooProject/go-uib/publish/mqtt"
	"github.com/ZaparooProject/go-uib/transport/uart"
)

const openTimeout = 2 * time.Second

type flags struct {
	devicePath *string
	configPath *string
	debug      *bool
	list       *bool
}

func parseFlags() *flags {
	f := &flags{
		devicePath: flag.String("device", "",
			"Serial device path (e.g., /dev/ttyUSB0 or COM3). Leave empty for auto-detection."),
		configPath: flag.String("config", "", "YAML config file"),
		debug:      flag.Bool("debug", false, "Enable debug output"),
		list:       flag.Bool("list", false, "List candidate serial ports and exit"),
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

	// Flags given on the command line win over the file
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "device":
			cfg.Serial = *f.devicePath
		case "debug":
			cfg.Debug = *f.debug
		}
	})
	return cfg, nil
}

func listDevices(ctx context.Context) error {
	devices, err := detection.DetectAll(ctx, detection.DefaultOptions())
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	for _, dev := range devices {
		_, _ = fmt.Printf("%s\t%s\t%s\t%s\n", dev.Path, dev.VIDPID, dev.Serial, dev.Name)
	}
	return nil
}

func resolvePort(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.Serial != "" {
		return cfg.Serial, nil
	}

	_, _ = fmt.Println("Auto-detecting UI Board...")
	devices, err := detection.DetectAll(ctx, detection.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("auto-detection failed: %w", err)
	}
	return devices[0].Path, nil
}

func connectPublisher(cfg *config.Config) (*mqtt.Publisher, error) {
	if !cfg.MQTT.Enabled() {
		return nil, nil
	}
	pub, err := mqtt.New(mqtt.Config{
		Broker:   cfg.MQTT.Broker,
		Topic:    cfg.MQTT.Topic,
		ClientID: cfg.MQTT.ClientID,
		QoS:      cfg.MQTT.QoS,
	})
	if err != nil {
		return nil, err
	}
	if err := pub.Connect(); err != nil {
		return nil, err
	}
	_, _ = fmt.Printf("Publishing to %s under %s/\n", cfg.MQTT.Broker, cfg.MQTT.Topic)
	return pub, nil
}

func printTelemetry(t uib.Telemetry) {
	// time is epoch milliseconds, lat/lon are degrees * 1e7, voltage is millivolts
	_, _ = fmt.Printf("%s  lat=%.7f lon=%.7f alt=%d hdg=%d V=%.3f fix=%d\n",
		time.UnixMilli(int64(t.Time)).UTC().Format(time.RFC3339Nano), //nolint:gosec // epoch millis fit int64
		float64(t.Latitude)/1e7, float64(t.Longitude)/1e7, t.Altitude,
		t.Heading, float64(t.Voltage)/1000, t.FixType)
}

func boardOptions(cfg *config.Config, pub *mqtt.Publisher) []uib.Option {
	opts := []uib.Option{
		uib.WithReadTimeout(cfg.ReadTimeout),
		uib.WithOnTelemetry(printTelemetry),
		uib.WithOnError(func(err error) {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}),
	}
	if pub != nil {
		opts = append(opts, uib.WithOnPacket(func(pkt uib.Packet) {
			if err := pub.Publish(pkt); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "publish: %v\n", err)
			}
		}))
	}
	return opts
}

func monitor(ctx context.Context, cfg *config.Config) error {
	path, err := resolvePort(ctx, cfg)
	if err != nil {
		return err
	}

	_, _ = fmt.Printf("Opening device: %s\n", path)
	transport, err := uart.New(path, uart.WithBaudRate(cfg.BaudRate), uart.WithOpenTimeout(openTimeout))
	if err != nil {
		return fmt.Errorf("failed to create UART transport: %w", err)
	}

	pub, err := connectPublisher(cfg)
	if err != nil {
		_ = transport.Close()
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	if pub != nil {
		defer pub.Close()
	}

	board, err := uib.NewBoard(transport, boardOptions(cfg, pub)...)
	if err != nil {
		_ = transport.Close()
		return err
	}
	if err := board.Start(ctx); err != nil {
		_ = board.Close()
		return err
	}

	select {
	case <-ctx.Done():
	case <-board.Done():
		_, _ = fmt.Println("Device disconnected")
	}

	stats := board.Stats()
	closeErr := board.Close()
	_, _ = fmt.Printf("frames=%d errors=%d discarded=%d bytes=%d\n",
		stats.Frames, stats.Errors, stats.Discarded, stats.BytesRead)
	if closeErr != nil && !errors.Is(closeErr, uib.ErrTransportClosed) {
		return closeErr
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

	if *f.list {
		err = listDevices(ctx)
	} else {
		err = monitor(ctx, cfg)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func main() {
	if run() != 0 {
		os.Exit(1)
	}
}
