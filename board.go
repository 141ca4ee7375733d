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
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
)

// BoardConfig contains the reader loop settings of a Board
type BoardConfig struct {
	// ReadTimeout bounds each blocking read; it is also how quickly the
	// reader notices a stop request.
	ReadTimeout time.Duration
	// ErrorBackoff is the pause after a failed read before the next one
	ErrorBackoff time.Duration
	// ReadSize is the minimum number of bytes asked for per read
	ReadSize int
}

// DefaultBoardConfig returns default board configuration
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		ReadTimeout:  500 * time.Millisecond,
		ErrorBackoff: 50 * time.Millisecond,
		ReadSize:     64,
	}
}

// BoardStats reports reader loop activity
type BoardStats struct {
	AssemblerStats
	BytesRead    uint64
	ReadErrors   uint64
	FramesSent   uint64
	BytesWritten uint64
}

// Board is the host side of a UI Board link. It owns a reader goroutine that
// turns incoming bytes into packets and a serialized write path for sending.
//
// Callbacks run on the reader goroutine and must be set before Start.
type Board struct {
	transport   Transport
	config      *BoardConfig
	registry    *Registry
	assembler   *Assembler
	OnPacket    func(pkt Packet)
	OnTelemetry func(t Telemetry)
	OnError     func(err error)
	cancel      context.CancelFunc
	done        chan struct{}
	loopErr     error
	stats       BoardStats
	mu          sync.Mutex
	writeMu     sync.Mutex
	started     bool
	closed      bool
}

// NewBoard creates a Board on transport. The reader does not run until Start.
func NewBoard(transport Transport, opts ...Option) (*Board, error) {
	if transport == nil {
		return nil, errors.New("board: nil transport")
	}
	board := &Board{
		transport: transport,
		config:    DefaultBoardConfig(),
	}

	for _, opt := range opts {
		if err := opt(board); err != nil {
			return nil, err
		}
	}

	board.assembler = NewAssembler(board.registry)
	return board, nil
}

// Start launches the reader goroutine. It stops when ctx is done, when the
// transport reports it is closed, or when Close is called.
func (b *Board) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBoardClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	b.started = true

	go b.readLoop(loopCtx)
	return nil
}

// Done is closed when the reader goroutine exits. It is nil before Start.
func (b *Board) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Send frames payload and writes it to the transport. Safe for concurrent use.
func (b *Board) Send(payload Payload) error {
	data, err := Encode(payload)
	if err != nil {
		return err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBoardClosed
	}

	n, err := b.transport.Write(data)
	b.mu.Lock()
	b.stats.BytesWritten += uint64(n)
	if err == nil && n == len(data) {
		b.stats.FramesSent++
	}
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("send %s frame: %w", payload.Kind(), err)
	}
	if n != len(data) {
		return NewTransportError("write", "", ErrShortWrite, ErrorTypeTransient)
	}
	debugf("sent %s", hex.EncodeToString(data))
	return nil
}

// SendTelemetry validates fields and sends them as a telemetry frame
func (b *Board) SendTelemetry(f TelemetryFields) error {
	t, err := NewTelemetry(f)
	if err != nil {
		return err
	}
	return b.Send(t)
}

// Stats returns a snapshot of the reader and writer counters
func (b *Board) Stats() BoardStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	stats := b.stats
	stats.AssemblerStats = b.assembler.Stats()
	return stats
}

// Close stops the reader, waits for it to exit and then closes the
// transport. Calling Close more than once is a no-op.
func (b *Board) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	var result *multierror.Error
	b.mu.Lock()
	if b.loopErr != nil {
		result = multierror.Append(result, b.loopErr)
	}
	b.mu.Unlock()
	if err := b.transport.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close transport: %w", err))
	}
	return result.ErrorOrNil()
}

func (b *Board) readLoop(ctx context.Context) {
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := b.transport.Read(b.readSize(), b.config.ReadTimeout)
		if err != nil {
			if errors.Is(err, ErrTransportClosed) {
				if ctx.Err() == nil {
					b.mu.Lock()
					b.loopErr = fmt.Errorf("reader stopped: %w", err)
					b.mu.Unlock()
				}
				debugln("reader stopped: transport closed")
				return
			}

			b.mu.Lock()
			b.stats.ReadErrors++
			b.mu.Unlock()
			b.reportError(fmt.Errorf("read: %w", err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(b.config.ErrorBackoff):
			}
			continue
		}
		if len(data) == 0 {
			continue
		}

		debugf("received %s", hex.EncodeToString(data))
		b.mu.Lock()
		b.stats.BytesRead += uint64(len(data))
		results := b.assembler.Feed(data)
		b.mu.Unlock()

		for _, res := range results {
			b.dispatch(res)
		}
	}
}

// readSize asks for everything already waiting when the transport can tell
func (b *Board) readSize() int {
	size := b.config.ReadSize
	if r, ok := b.transport.(AvailabilityReporter); ok {
		if n, err := r.BytesAvailable(); err == nil && n > size {
			size = n
		}
	}
	return size
}

func (b *Board) dispatch(res Result) {
	if res.Err != nil {
		b.reportError(res.Err)
		return
	}
	if b.OnPacket != nil {
		b.OnPacket(res.Packet)
	}
	if t, ok := res.Packet.Telemetry(); ok && b.OnTelemetry != nil {
		b.OnTelemetry(t)
	}
}

func (b *Board) reportError(err error) {
	if b.OnError != nil {
		b.OnError(err)
		return
	}
	debugf("board: %v", err)
}
