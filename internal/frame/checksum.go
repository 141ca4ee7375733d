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

package frame

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

// Checksum parameter sets. Frames on the wire use XModem; the board firmware's
// own routine seeds the register with 0xFFFF, which is CCITT-FALSE.
var (
	XModem      = crc16.CRC16_XMODEM
	CCITTFalse  = crc16.CRC16_CCITT_FALSE
	xmodemTable = crc16.MakeTable(XModem)
)

// CalculateChecksum returns the frame CRC-16 (XModem) of data
func CalculateChecksum(data []byte) uint16 {
	return crc16.Checksum(data, xmodemTable)
}

// CalculateChecksumWith computes a CRC-16 of data using the given parameters
func CalculateChecksumWith(params crc16.Params, data []byte) uint16 {
	return crc16.Checksum(data, crc16.MakeTable(params))
}

// AppendChecksum appends the big-endian frame CRC-16 of data to data
func AppendChecksum(data []byte) []byte {
	return binary.BigEndian.AppendUint16(data, CalculateChecksum(data))
}

// ValidateChecksum reports whether the last two bytes of frame hold the
// big-endian CRC-16 of everything before them.
func ValidateChecksum(frame []byte) (want, got uint16, ok bool) {
	if len(frame) < ChecksumLength {
		return 0, 0, false
	}
	body := frame[:len(frame)-ChecksumLength]
	want = CalculateChecksum(body)
	got = binary.BigEndian.Uint16(frame[len(body):])
	return want, got, want == got
}
