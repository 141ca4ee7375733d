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

package uib

import (
	"fmt"
	"time"
)

// Option is a functional option for configuring a Board
type Option func(*Board) error

// WithReadTimeout sets how long each read waits for data
func WithReadTimeout(timeout time.Duration) Option {
	return func(b *Board) error {
		if timeout <= 0 {
			return fmt.Errorf("read timeout must be positive, got %s", timeout)
		}
		b.config.ReadTimeout = timeout
		return nil
	}
}

// WithReadSize sets the minimum number of bytes requested per read
func WithReadSize(size int) Option {
	return func(b *Board) error {
		if size <= 0 {
			return fmt.Errorf("read size must be positive, got %d", size)
		}
		b.config.ReadSize = size
		return nil
	}
}

// WithErrorBackoff sets the pause after a failed read
func WithErrorBackoff(backoff time.Duration) Option {
	return func(b *Board) error {
		b.config.ErrorBackoff = backoff
		return nil
	}
}

// WithRegistry decodes incoming frames with registry instead of the default
func WithRegistry(registry *Registry) Option {
	return func(b *Board) error {
		b.registry = registry
		return nil
	}
}

// WithRetryConfig retries failed writes according to config
func WithRetryConfig(config *RetryConfig) Option {
	return func(b *Board) error {
		if tr, ok := b.transport.(*TransportWithRetry); ok {
			tr.SetRetryConfig(config)
			return nil
		}
		b.transport = NewTransportWithRetry(b.transport, config)
		return nil
	}
}

// WithOnPacket sets the callback for every decoded packet
func WithOnPacket(fn func(pkt Packet)) Option {
	return func(b *Board) error {
		b.OnPacket = fn
		return nil
	}
}

// WithOnTelemetry sets the callback for decoded telemetry payloads
func WithOnTelemetry(fn func(t Telemetry)) Option {
	return func(b *Board) error {
		b.OnTelemetry = fn
		return nil
	}
}

// WithOnError sets the callback for read failures and rejected frames
func WithOnError(fn func(err error)) Option {
	return func(b *Board) error {
		b.OnError = fn
		return nil
	}
}
