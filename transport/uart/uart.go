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

// Package uart provides the serial transport for a UI Board
package uart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	uib "github.com/ZaparooProject/go-uib"
	"github.com/ZaparooProject/go-uib/internal/transport"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the board's fixed line rate (8N1).
	DefaultBaudRate = 115200

	openRetryInterval = 100 * time.Millisecond
	writeRetries      = 3
)

// Transport implements uib.Transport over a serial port
type Transport struct {
	port        serial.Port
	portName    string
	mode        *serial.Mode
	openTimeout time.Duration
	readTimeout time.Duration
	mu          sync.Mutex
	readMu      sync.Mutex
	writeMu     sync.Mutex
}

// Option configures a Transport
type Option func(*Transport)

// WithBaudRate overrides the default 115200 baud
func WithBaudRate(baud int) Option {
	return func(t *Transport) {
		if baud > 0 {
			t.mode.BaudRate = baud
		}
	}
}

// WithOpenTimeout keeps retrying a busy or missing port for up to d. This
// covers USB adapters that are still enumerating when the host starts.
func WithOpenTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.openTimeout = d
	}
}

// New opens portName at 115200 8N1 unless overridden by opts
func New(portName string, opts ...Option) (*Transport, error) {
	t := &Transport{
		portName: portName,
		mode: &serial.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
	for _, opt := range opts {
		opt(t)
	}

	port, err := t.open()
	if err != nil {
		return nil, err
	}
	t.port = port
	return t, nil
}

func (t *Transport) open() (serial.Port, error) {
	var lastErr error
	attempt := func() (serial.Port, bool, error) {
		port, err := serial.Open(t.portName, t.mode)
		if err == nil {
			return port, false, nil
		}
		lastErr = err
		if t.openTimeout > 0 && isTransientOpenError(err) {
			return nil, true, nil
		}
		return nil, false, t.openError(err)
	}

	if t.openTimeout <= 0 {
		port, _, err := attempt()
		return port, err
	}

	port, err := transport.TimeoutRetry(t.openTimeout, openRetryInterval, attempt)
	if err != nil && lastErr != nil && errors.Is(err, uib.ErrTransportTimeout) {
		return nil, t.openError(lastErr)
	}
	return port, err
}

func (t *Transport) openError(err error) error {
	return uib.NewTransportError("open", t.portName,
		fmt.Errorf("failed to open serial port: %w", err), uib.ErrorTypePermanent)
}

func isTransientOpenError(err error) bool {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return false
	}
	switch portErr.Code() {
	case serial.PortBusy, serial.PortNotFound:
		return true
	default:
		return false
	}
}

func (t *Transport) currentPort() serial.Port {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port
}

// Write sends all of data, retrying partial writes
func (t *Transport) Write(data []byte) (int, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	port := t.currentPort()
	if port == nil {
		return 0, uib.ErrTransportClosed
	}

	written := 0
	_, err := transport.WithRetry(transport.RetryConfig{
		Description: "write",
		MaxRetries:  writeRetries,
	}, func() (struct{}, bool, error) {
		n, err := port.Write(data[written:])
		written += n
		if err != nil {
			return struct{}{}, false, t.ioError("write", err, uib.ErrTransportWrite)
		}
		return struct{}{}, written < len(data), nil
	})
	if err != nil {
		var te *uib.TransportError
		if errors.As(err, &te) && te.Port == "" {
			te.Port = t.portName
			te.Err = fmt.Errorf("%w: %d of %d bytes", uib.ErrShortWrite, written, len(data))
		}
		return written, err
	}
	return written, nil
}

// Read returns up to maxBytes, waiting at most timeout for data. A timeout
// yields an empty slice and no error.
func (t *Transport) Read(maxBytes int, timeout time.Duration) ([]byte, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	port := t.currentPort()
	if port == nil {
		return nil, uib.ErrTransportClosed
	}
	if maxBytes <= 0 {
		return []byte{}, nil
	}

	if timeout != t.readTimeout {
		if err := port.SetReadTimeout(timeout); err != nil {
			return nil, t.ioError("set read timeout", err, uib.ErrTransportRead)
		}
		t.readTimeout = timeout
	}

	buf := make([]byte, maxBytes)
	n, err := port.Read(buf)
	if err != nil {
		return nil, t.ioError("read", err, uib.ErrTransportRead)
	}
	return buf[:n], nil
}

func (t *Transport) ioError(op string, err, kind error) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
		return uib.ErrTransportClosed
	}
	if t.currentPort() == nil {
		return uib.ErrTransportClosed
	}
	return uib.NewTransportError(op, t.portName,
		fmt.Errorf("%w: %w", kind, err), uib.ErrorTypeTransient)
}

// Close closes the serial port. A Read blocked on the port returns
// uib.ErrTransportClosed.
func (t *Transport) Close() error {
	t.mu.Lock()
	port := t.port
	t.port = nil
	t.mu.Unlock()

	if port == nil {
		return nil
	}
	if err := port.Close(); err != nil {
		return uib.NewTransportError("close", t.portName, err, uib.ErrorTypePermanent)
	}
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	return t.currentPort() != nil
}

// Type returns the transport type
func (*Transport) Type() uib.TransportType {
	return uib.TransportUART
}

// PortName returns the serial device path
func (t *Transport) PortName() string {
	return t.portName
}

// BaudRate returns the configured line rate
func (t *Transport) BaudRate() int {
	return t.mode.BaudRate
}
