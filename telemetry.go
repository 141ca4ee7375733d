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
	"encoding/binary"
	"fmt"
	"math"
)

// Telemetry payload identity and layout
const (
	TelemetryClass   = 0x05
	TelemetryID      = 0x03
	TelemetryVersion = 0x01
	TelemetryLength  = 24
)

// TelemetryKind is the frame kind of a Telemetry payload
var TelemetryKind = Kind{Class: TelemetryClass, ID: TelemetryID}

// Telemetry is the board's periodic position and power report.
// Values are immutable; build a new one for every message.
type Telemetry struct {
	Time      uint64 // Epoch timestamp
	Latitude  int32
	Longitude int32
	Altitude  uint16
	Heading   int16
	Voltage   uint16
	Version   uint8
	FixType   uint8
}

// TelemetryFields holds caller supplied telemetry values before they are
// checked against their wire widths.
type TelemetryFields struct {
	Time      uint64
	Latitude  int64
	Longitude int64
	Altitude  int64
	Heading   int64
	Voltage   int64
	FixType   int64
	// Version zero selects TelemetryVersion
	Version int64
}

type fieldRange struct {
	name  string
	value int64
	min   int64
	max   int64
}

// NewTelemetry validates fields and returns the Telemetry they describe.
// Out of range values fail with *EncodingRangeError.
func NewTelemetry(f TelemetryFields) (Telemetry, error) {
	if f.Version == 0 {
		f.Version = TelemetryVersion
	}

	checks := []fieldRange{
		{"version", f.Version, 0, math.MaxUint8},
		{"latitude", f.Latitude, math.MinInt32, math.MaxInt32},
		{"longitude", f.Longitude, math.MinInt32, math.MaxInt32},
		{"altitude", f.Altitude, 0, math.MaxUint16},
		{"heading", f.Heading, math.MinInt16, math.MaxInt16},
		{"voltage", f.Voltage, 0, math.MaxUint16},
		{"fix_type", f.FixType, 0, math.MaxUint8},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return Telemetry{}, &EncodingRangeError{Field: c.name, Value: c.value, Min: c.min, Max: c.max}
		}
	}

	return Telemetry{
		Version:   uint8(f.Version),
		Time:      f.Time,
		Latitude:  int32(f.Latitude),
		Longitude: int32(f.Longitude),
		Altitude:  uint16(f.Altitude),
		Heading:   int16(f.Heading),
		Voltage:   uint16(f.Voltage),
		FixType:   uint8(f.FixType),
	}, nil
}

// Kind implements Payload
func (Telemetry) Kind() Kind {
	return TelemetryKind
}

// AppendBinary appends the 24-byte big-endian encoding of t to b
func (t Telemetry) AppendBinary(b []byte) []byte {
	b = append(b, t.Version)
	b = binary.BigEndian.AppendUint64(b, t.Time)
	b = binary.BigEndian.AppendUint32(b, uint32(t.Latitude))
	b = binary.BigEndian.AppendUint32(b, uint32(t.Longitude))
	b = binary.BigEndian.AppendUint16(b, t.Altitude)
	b = binary.BigEndian.AppendUint16(b, uint16(t.Heading))
	b = binary.BigEndian.AppendUint16(b, t.Voltage)
	return append(b, t.FixType)
}

// MarshalBinary implements encoding.BinaryMarshaler. It never fails.
func (t Telemetry) MarshalBinary() ([]byte, error) {
	return t.AppendBinary(make([]byte, 0, TelemetryLength)), nil
}

func (t Telemetry) String() string {
	return fmt.Sprintf("v%d time=%d lat=%d lon=%d alt=%d hdg=%d volt=%d fix=%d",
		t.Version, t.Time, t.Latitude, t.Longitude, t.Altitude, t.Heading, t.Voltage, t.FixType)
}

// DecodeTelemetry parses a telemetry payload. Bytes past the first 24 are
// ignored. No checksum is verified here.
func DecodeTelemetry(data []byte) (Telemetry, error) {
	if len(data) < TelemetryLength {
		return Telemetry{}, &DecodingLengthError{Payload: "telemetry", Want: TelemetryLength, Got: len(data)}
	}
	return Telemetry{
		Version:   data[0],
		Time:      binary.BigEndian.Uint64(data[1:9]),
		Latitude:  int32(binary.BigEndian.Uint32(data[9:13])),
		Longitude: int32(binary.BigEndian.Uint32(data[13:17])),
		Altitude:  binary.BigEndian.Uint16(data[17:19]),
		Heading:   int16(binary.BigEndian.Uint16(data[19:21])),
		Voltage:   binary.BigEndian.Uint16(data[21:23]),
		FixType:   data[23],
	}, nil
}

// TelemetryCodec returns the registry entry for Telemetry
func TelemetryCodec() Codec {
	return Codec{
		Kind:   TelemetryKind,
		Name:   "telemetry",
		Length: TelemetryLength,
		Decode: func(data []byte) (Payload, error) {
			t, err := DecodeTelemetry(data)
			if err != nil {
				return nil, err
			}
			return t, nil
		},
	}
}
