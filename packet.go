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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-uib/internal/frame"
)

const maxPayloadLength = frame.MaxPayloadLength

// Packet is one decoded frame
type Packet struct {
	Payload  Payload
	Kind     Kind
	Checksum uint16
}

// Telemetry returns the payload as Telemetry, if it is one
func (p Packet) Telemetry() (Telemetry, bool) {
	t, ok := p.Payload.(Telemetry)
	return t, ok
}

// Encode frames p: sync marker, class, id, big-endian payload length, the
// payload bytes and a big-endian CRC-16 over everything before it.
func Encode(p Payload) ([]byte, error) {
	if p == nil {
		return nil, errors.New("encode: nil payload")
	}
	body, err := p.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	if len(body) > maxPayloadLength {
		return nil, &EncodingRangeError{
			Field: "payload_length",
			Value: int64(len(body)),
			Min:   0,
			Max:   maxPayloadLength,
		}
	}

	kind := p.Kind()
	buf := make([]byte, 0, frame.Overhead+len(body))
	buf = append(buf, frame.Sync1, frame.Sync2, kind.Class, kind.ID)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(body)))
	buf = append(buf, body...)
	return frame.AppendChecksum(buf), nil
}

// EncodeTelemetryPacket validates fields and returns the framed telemetry
// message ready to be written to a transport.
func EncodeTelemetryPacket(f TelemetryFields) ([]byte, error) {
	t, err := NewTelemetry(f)
	if err != nil {
		return nil, err
	}
	return Encode(t)
}

// FrameLength returns the total frame size announced by a frame header.
// header must hold at least the 6 header bytes.
func FrameLength(header []byte) (int, error) {
	if len(header) < frame.HeaderLength {
		return 0, &FrameTruncatedError{Want: frame.HeaderLength, Got: len(header)}
	}
	n := int(binary.BigEndian.Uint16(header[frame.LengthOffset:]))
	return frame.Overhead + n, nil
}

// Decode validates and decodes a frame using the default registry
func Decode(buf []byte) (Packet, error) {
	return DefaultRegistry().Decode(buf)
}

// Decode validates the frame at the start of buf and decodes its payload.
// Checks run in order: header present, sync marker, known kind, declared
// length, frame complete, checksum. Bytes after the frame are ignored.
func (r *Registry) Decode(buf []byte) (Packet, error) {
	if len(buf) < frame.HeaderLength {
		return Packet{}, &FrameTruncatedError{Want: frame.HeaderLength, Got: len(buf)}
	}
	if buf[0] != frame.Sync1 || buf[1] != frame.Sync2 {
		return Packet{}, &FrameSyncError{Got: [2]byte{buf[0], buf[1]}}
	}

	kind := Kind{Class: buf[frame.ClassOffset], ID: buf[frame.IDOffset]}
	codec, ok := r.Lookup(kind)
	if !ok {
		return Packet{}, &UnknownPayloadTypeError{Class: kind.Class, ID: kind.ID}
	}

	payloadLen := int(binary.BigEndian.Uint16(buf[frame.LengthOffset:]))
	if codec.Length != 0 && payloadLen != codec.Length {
		return Packet{}, &DecodingLengthError{Payload: codec.Name, Want: codec.Length, Got: payloadLen}
	}

	total := frame.Overhead + payloadLen
	if len(buf) < total {
		return Packet{}, &FrameTruncatedError{Want: total, Got: len(buf)}
	}

	want, got, ok := frame.ValidateChecksum(buf[:total])
	if !ok {
		return Packet{}, &ChecksumMismatchError{Want: want, Got: got}
	}

	payload, err := codec.Decode(buf[frame.HeaderLength : frame.HeaderLength+payloadLen])
	if err != nil {
		return Packet{}, fmt.Errorf("decode %s payload: %w", codec.Name, err)
	}
	return Packet{Kind: kind, Payload: payload, Checksum: got}, nil
}
