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

// Package config loads the YAML file shared by the uib commands
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaudRate    = 115200
	defaultReadTimeout = 500 * time.Millisecond
	defaultInterval    = time.Second
	defaultTopic       = "uib"
	defaultClientID    = "uibmon"
)

// MQTT configures the telemetry bridge. An empty Broker disables it.
type MQTT struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`
}

// Enabled reports whether a broker is configured
func (m MQTT) Enabled() bool {
	return m.Broker != ""
}

// Config is the command configuration
type Config struct {
	MQTT        MQTT          `yaml:"mqtt"`
	Serial      string        `yaml:"serial"`
	BaudRate    int           `yaml:"baudrate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	Interval    time.Duration `yaml:"interval"`
	Debug       bool          `yaml:"debug"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		BaudRate:    defaultBaudRate,
		ReadTimeout: defaultReadTimeout,
		Interval:    defaultInterval,
		MQTT: MQTT{
			Topic:    defaultTopic,
			ClientID: defaultClientID,
		},
	}
}

// Load reads path over the defaults and validates the result. Durations are
// written the way time.ParseDuration reads them ("250ms", "2s").
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the -config flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.BaudRate <= 0 {
		result = multierror.Append(result, fmt.Errorf("baudrate must be positive, got %d", c.BaudRate))
	}
	if c.ReadTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("read_timeout must be positive, got %v", c.ReadTimeout))
	}
	if c.Interval <= 0 {
		result = multierror.Append(result, fmt.Errorf("interval must be positive, got %v", c.Interval))
	}
	if c.MQTT.QoS > 2 {
		result = multierror.Append(result, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS))
	}
	if c.MQTT.Enabled() && c.MQTT.Topic == "" {
		result = multierror.Append(result, errors.New("mqtt.topic is required when mqtt.broker is set"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
