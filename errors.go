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
	"errors"
	"fmt"
)

// Protocol errors. Every typed error below matches one of these with errors.Is.
var (
	ErrEncodingRange      = errors.New("value out of range for field width")
	ErrDecodingLength     = errors.New("insufficient bytes for payload")
	ErrFrameSync          = errors.New("frame sync mismatch")
	ErrUnknownPayloadType = errors.New("unknown payload type")
	ErrFrameTruncated     = errors.New("frame truncated")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrDuplicateKind      = errors.New("payload kind already registered")
)

// Transport errors
var (
	ErrTransportClosed  = errors.New("transport closed")
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrShortWrite       = errors.New("short write")
)

// Board errors
var (
	ErrAlreadyStarted = errors.New("board already started")
	ErrBoardClosed    = errors.New("board closed")
)

// EncodingRangeError reports a field value that does not fit its wire width.
// It is a caller programming error; nothing is truncated.
type EncodingRangeError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *EncodingRangeError) Error() string {
	return fmt.Sprintf("%s: %d not in [%d, %d]: %v", e.Field, e.Value, e.Min, e.Max, ErrEncodingRange)
}

// Is reports whether target is ErrEncodingRange
func (*EncodingRangeError) Is(target error) bool {
	return target == ErrEncodingRange
}

// DecodingLengthError reports a payload that is shorter than, or a declared
// length that differs from, what its kind requires.
type DecodingLengthError struct {
	Payload string
	Want    int
	Got     int
}

func (e *DecodingLengthError) Error() string {
	return fmt.Sprintf("%s payload: want %d bytes, got %d: %v", e.Payload, e.Want, e.Got, ErrDecodingLength)
}

// Is reports whether target is ErrDecodingLength
func (*DecodingLengthError) Is(target error) bool {
	return target == ErrDecodingLength
}

// FrameSyncError reports a buffer that does not start with the sync marker
type FrameSyncError struct {
	Got [2]byte
}

func (e *FrameSyncError) Error() string {
	return fmt.Sprintf("got %02X %02X: %v", e.Got[0], e.Got[1], ErrFrameSync)
}

// Is reports whether target is ErrFrameSync
func (*FrameSyncError) Is(target error) bool {
	return target == ErrFrameSync
}

// UnknownPayloadTypeError reports a well-framed packet whose kind has no
// registered codec.
type UnknownPayloadTypeError struct {
	Class byte
	ID    byte
}

func (e *UnknownPayloadTypeError) Error() string {
	return fmt.Sprintf("class 0x%02X id 0x%02X: %v", e.Class, e.ID, ErrUnknownPayloadType)
}

// Is reports whether target is ErrUnknownPayloadType
func (*UnknownPayloadTypeError) Is(target error) bool {
	return target == ErrUnknownPayloadType
}

// Kind returns the observed payload kind
func (e *UnknownPayloadTypeError) Kind() Kind {
	return Kind{Class: e.Class, ID: e.ID}
}

// FrameTruncatedError reports a buffer that ends before the frame does.
// On a stream this means more input is needed.
type FrameTruncatedError struct {
	Want int
	Got  int
}

func (e *FrameTruncatedError) Error() string {
	return fmt.Sprintf("need %d bytes, have %d: %v", e.Want, e.Got, ErrFrameTruncated)
}

// Is reports whether target is ErrFrameTruncated
func (*FrameTruncatedError) Is(target error) bool {
	return target == ErrFrameTruncated
}

// ChecksumMismatchError reports a frame whose trailing CRC does not match
type ChecksumMismatchError struct {
	Want uint16
	Got  uint16
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("computed 0x%04X, frame carries 0x%04X: %v", e.Want, e.Got, ErrChecksumMismatch)
}

// Is reports whether target is ErrChecksumMismatch
func (*ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// NeedsMoreData reports whether err only means the frame is not complete yet
func NeedsMoreData(err error) bool {
	return errors.Is(err, ErrFrameTruncated)
}

// IsFrameError reports whether err came from frame or payload validation
func IsFrameError(err error) bool {
	switch {
	case errors.Is(err, ErrFrameSync),
		errors.Is(err, ErrUnknownPayloadType),
		errors.Is(err, ErrFrameTruncated),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrDecodingLength):
		return true
	default:
		return false
	}
}

// ErrorType classifies transport errors
type ErrorType int

const (
	// ErrorTypePermanent errors will not go away by trying again
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may succeed on the next attempt
	ErrorTypeTransient
	// ErrorTypeTimeout errors are read or write deadlines that passed
	ErrorTypeTimeout
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return "permanent"
	}
}

// TransportError wraps an error from the byte transport with the operation
// and port it happened on.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError of the given type
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Err:       err,
		Op:        op,
		Port:      port,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a retryable timeout TransportError
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// IsRetryable reports whether a transport operation that failed with err may
// be attempted again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrShortWrite):
		return true
	default:
		return false
	}
}

// GetErrorType returns the ErrorType of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrShortWrite):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
