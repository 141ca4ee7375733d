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

/*
Package uib implements the host side of the UI Board telemetry protocol.

The UI Board reports position, heading and supply voltage over a serial link
as framed binary messages. Each frame carries a sync marker, a payload kind,
a length and a CRC-16:

	offset  size  field
	0       1     sync1 = 0xE4
	1       1     sync2 = 0xEB
	2       1     packet class
	3       1     packet id
	4       2     payload length (big-endian)
	6       N     payload
	6+N     2     CRC-16/XMODEM over bytes [0, 6+N) (big-endian)

Features:
  - Telemetry payload codec with range-checked construction
  - Frame encoding and validation with typed, inspectable errors
  - A payload registry so new kinds can be added without touching framing
  - A stream assembler that resynchronizes after noise and corruption
  - A Board type that runs the reader loop over any Transport

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-uib"
	    "github.com/ZaparooProject/go-uib/transport/uart"
	)

	transport, err := uart.New("/dev/ttyACM0")
	if err != nil {
	    log.Fatal(err)
	}

	board, err := uib.NewBoard(transport,
	    uib.WithOnTelemetry(func(t uib.Telemetry) {
	        fmt.Println(t)
	    }),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer board.Close()

	if err := board.Start(ctx); err != nil {
	    log.Fatal(err)
	}

Sending:

	frame, err := uib.EncodeTelemetryPacket(uib.TelemetryFields{
	    Time:     uint64(time.Now().UnixMilli()),
	    Latitude: 332030176,
	    // ...
	})

Stream Decoding:

Without a Board, an Assembler can be fed raw bytes directly:

	asm := uib.NewAssembler(nil)
	for _, res := range asm.Feed(chunk) {
	    if res.Err != nil {
	        continue // corrupted or unknown frame, already skipped
	    }
	    handle(res.Packet)
	}

Error Handling:

Decode errors match sentinels with errors.Is:

	if errors.Is(err, uib.ErrChecksumMismatch) {
	    // Corrupted frame
	}

ErrFrameTruncated only means more bytes are needed.

Thread Safety:

Encode, Decode and Registry are safe for concurrent use. An Assembler is
not; Board serializes its own access. Board.Send may be called from any
goroutine.
*/
package uib
