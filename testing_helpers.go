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
	"sync"
	"time"
)

// MockTransport is an in-memory Transport. Bytes queued with Inject are
// handed out by Read; writes are recorded and can be inspected with Written.
type MockTransport struct {
	notify    chan struct{}
	closeCh   chan struct{}
	readErr   error
	rx        []byte
	tx        []byte
	writeErrs []error
	writeMax  int
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates an open mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		notify:  make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
}

// Inject queues data to be returned by subsequent reads
func (m *MockTransport) Inject(data []byte) {
	m.mu.Lock()
	m.rx = append(m.rx, data...)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// FailNextRead makes the next Read return err
func (m *MockTransport) FailNextRead(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// FailWrites makes the next len(errs) writes return the given errors in order
func (m *MockTransport) FailWrites(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErrs = append(m.writeErrs, errs...)
}

// LimitWrites caps how many bytes a single Write accepts. Zero removes the cap.
func (m *MockTransport) LimitWrites(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeMax = n
}

// Written returns a copy of every byte written so far
func (m *MockTransport) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.tx...)
}

// Write records data
func (m *MockTransport) Write(data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrTransportClosed
	}
	if len(m.writeErrs) > 0 {
		err := m.writeErrs[0]
		m.writeErrs = m.writeErrs[1:]
		return 0, err
	}

	n := len(data)
	if m.writeMax > 0 && n > m.writeMax {
		n = m.writeMax
	}
	m.tx = append(m.tx, data[:n]...)
	return n, nil
}

// Read returns up to maxBytes queued bytes, waiting at most timeout for some
// to be injected.
func (m *MockTransport) Read(maxBytes int, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrTransportClosed
		}
		if err := m.readErr; err != nil {
			m.readErr = nil
			m.mu.Unlock()
			return nil, err
		}
		if len(m.rx) > 0 {
			n := min(maxBytes, len(m.rx))
			out := append([]byte(nil), m.rx[:n]...)
			m.rx = m.rx[n:]
			m.mu.Unlock()
			return out, nil
		}
		m.mu.Unlock()

		select {
		case <-m.notify:
		case <-m.closeCh:
		case <-timer.C:
			return []byte{}, nil
		}
	}
}

// BytesAvailable returns the number of injected bytes not read yet
func (m *MockTransport) BytesAvailable() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrTransportClosed
	}
	return len(m.rx), nil
}

// Close unblocks pending reads and marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.closeCh)
	}
	return nil
}

// IsConnected returns false once the mock is closed
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}
