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
	"context"
	"fmt"
	"time"
)

// Transport is the byte stream a Board talks over. UART is the usual
// backend; tests use MockTransport.
type Transport interface {
	// Write sends data and returns the number of bytes written
	Write(data []byte) (int, error)

	// Read returns up to max bytes, waiting at most timeout for the first one.
	// A timeout returns an empty slice and a nil error.
	Read(max int, timeout time.Duration) ([]byte, error)

	// Close closes the transport connection
	Close() error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// AvailabilityReporter is implemented by transports that can tell how many
// received bytes are waiting to be read.
type AvailabilityReporter interface {
	BytesAvailable() (int, error)
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportWithRetry wraps a Transport so that writes failing with a
// retryable error are attempted again.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// Write writes data with retry logic. Bytes already accepted by a failed
// attempt are not sent again.
func (t *TransportWithRetry) Write(data []byte) (int, error) {
	written := 0
	err := RetryWithConfig(context.Background(), t.config, func() error {
		n, err := t.transport.Write(data[written:])
		written += n
		if err != nil {
			return &TransportError{
				Op:        "write",
				Err:       err,
				Type:      GetErrorType(err),
				Retryable: IsRetryable(err),
			}
		}
		if written < len(data) {
			return NewTransportError("write", "", ErrShortWrite, ErrorTypeTransient)
		}
		return nil
	})
	return written, err
}

// Read reads from the underlying transport. Reads are not retried; a
// timeout already means "try again later" to the caller.
func (t *TransportWithRetry) Read(maxBytes int, timeout time.Duration) ([]byte, error) {
	data, err := t.transport.Read(maxBytes, timeout)
	if err != nil {
		return nil, fmt.Errorf("read from underlying transport: %w", err)
	}
	return data, nil
}

// BytesAvailable forwards to the underlying transport when it can report
func (t *TransportWithRetry) BytesAvailable() (int, error) {
	if r, ok := t.transport.(AvailabilityReporter); ok {
		return r.BytesAvailable()
	}
	return 0, nil
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
