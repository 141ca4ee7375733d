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
	"bytes"

	"github.com/ZaparooProject/go-uib/internal/frame"
)

// Result is one outcome of feeding bytes to an Assembler: either a decoded
// packet or the error that made a candidate frame unusable.
type Result struct {
	Err    error
	Packet Packet
}

// AssemblerStats counts what an Assembler has seen since it was created or reset
type AssemblerStats struct {
	Frames    uint64 // Frames decoded
	Errors    uint64 // Candidate frames rejected
	Discarded uint64 // Bytes dropped while searching for a sync marker
}

// Assembler turns a byte stream into frames. It buffers input until a whole
// frame is present, skips noise between frames and resynchronizes after a
// corrupted one.
//
// Feed never blocks. An Assembler is not safe for concurrent use.
type Assembler struct {
	registry *Registry
	buf      []byte
	off      int
	stats    AssemblerStats
}

// NewAssembler creates an Assembler that decodes with registry, or with the
// default registry when registry is nil.
func NewAssembler(registry *Registry) *Assembler {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Assembler{
		registry: registry,
		buf:      make([]byte, 0, 2*(frame.Overhead+TelemetryLength)),
	}
}

// Feed appends data to the buffer and returns every frame it completes,
// along with decode errors for candidate frames that were dropped.
func (a *Assembler) Feed(data []byte) []Result {
	a.buf = append(a.buf, data...)

	var results []Result
	for {
		a.resync()
		pending := a.buf[a.off:]
		if len(pending) < frame.HeaderLength {
			break
		}

		pkt, err := a.registry.Decode(pending)
		if err == nil {
			n, _ := FrameLength(pending)
			a.off += n
			a.stats.Frames++
			results = append(results, Result{Packet: pkt})
			continue
		}
		if NeedsMoreData(err) {
			break
		}

		// Drop only the first sync byte so a real frame starting inside the
		// rejected one is still found.
		debugf("dropping candidate frame: %v", err)
		a.off++
		a.stats.Errors++
		results = append(results, Result{Err: err})
	}

	a.compact()
	return results
}

// resync advances past bytes that cannot start a frame. A lone trailing
// sync1 is kept since its sync2 may arrive with the next read.
func (a *Assembler) resync() {
	pending := a.buf[a.off:]
	idx := bytes.Index(pending, frame.SyncMarker)
	if idx < 0 {
		idx = len(pending)
		if idx > 0 && pending[idx-1] == frame.Sync1 {
			idx--
		}
	}
	if idx > 0 {
		debugf("discarding %d bytes of noise", idx)
		a.stats.Discarded += uint64(idx)
		a.off += idx
	}
}

func (a *Assembler) compact() {
	if a.off == 0 {
		return
	}
	n := copy(a.buf, a.buf[a.off:])
	a.buf = a.buf[:n]
	a.off = 0
}

// Buffered returns the number of bytes waiting for the rest of a frame
func (a *Assembler) Buffered() int {
	return len(a.buf) - a.off
}

// Reset drops buffered bytes and clears the counters
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
	a.off = 0
	a.stats = AssemblerStats{}
}

// Stats returns the counters accumulated so far
func (a *Assembler) Stats() AssemblerStats {
	return a.stats
}
