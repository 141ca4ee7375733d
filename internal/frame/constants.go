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

// Package frame provides wire constants and checksum routines for UI Board frames
package frame

// Frame markers
const (
	Sync1 = 0xE4 // First sync byte
	Sync2 = 0xEB // Second sync byte
)

// Frame layout
const (
	HeaderLength   = 6 // sync1 + sync2 + class + id + 2-byte length
	ChecksumLength = 2 // Trailing CRC-16
	Overhead       = HeaderLength + ChecksumLength

	ClassOffset  = 2
	IDOffset     = 3
	LengthOffset = 4

	MaxPayloadLength = 0xFFFF                       // payload_length is a uint16
	MaxFrameLength   = Overhead + MaxPayloadLength // Largest frame the wire format can describe
)

// SyncMarker is the two-byte sequence every frame starts with
var SyncMarker = []byte{Sync1, Sync2}
