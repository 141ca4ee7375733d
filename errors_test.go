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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameErrorsMatchSentinels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err      error
		sentinel error
		name     string
	}{
		{name: "encoding range", err: &EncodingRangeError{Field: "altitude"}, sentinel: ErrEncodingRange},
		{name: "decoding length", err: &DecodingLengthError{Payload: "telemetry"}, sentinel: ErrDecodingLength},
		{name: "frame sync", err: &FrameSyncError{}, sentinel: ErrFrameSync},
		{name: "unknown payload", err: &UnknownPayloadTypeError{Class: 1, ID: 2}, sentinel: ErrUnknownPayloadType},
		{name: "truncated", err: &FrameTruncatedError{Want: 32, Got: 6}, sentinel: ErrFrameTruncated},
		{name: "checksum", err: &ChecksumMismatchError{Want: 1, Got: 2}, sentinel: ErrChecksumMismatch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.sentinel)
			assert.True(t, strings.Contains(tt.err.Error(), tt.sentinel.Error()),
				"Error() = %q should mention %q", tt.err.Error(), tt.sentinel.Error())
		})
	}
}

func TestNeedsMoreData(t *testing.T) {
	t.Parallel()
	assert.True(t, NeedsMoreData(&FrameTruncatedError{Want: 8, Got: 2}))
	assert.True(t, NeedsMoreData(fmt.Errorf("outer: %w", &FrameTruncatedError{})))
	assert.False(t, NeedsMoreData(&ChecksumMismatchError{}))
	assert.False(t, NeedsMoreData(nil))
}

func TestIsFrameError(t *testing.T) {
	t.Parallel()
	assert.True(t, IsFrameError(&FrameSyncError{}))
	assert.True(t, IsFrameError(&UnknownPayloadTypeError{}))
	assert.True(t, IsFrameError(&DecodingLengthError{}))
	assert.False(t, IsFrameError(&EncodingRangeError{}))
	assert.False(t, IsFrameError(ErrTransportTimeout))
}

func TestUnknownPayloadTypeErrorKind(t *testing.T) {
	t.Parallel()
	err := &UnknownPayloadTypeError{Class: 0x07, ID: 0x01}
	assert.Equal(t, Kind{Class: 0x07, ID: 0x01}, err.Kind())
	assert.Contains(t, err.Error(), "0x07")
	assert.Contains(t, err.Error(), "0x01")
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "transport timeout retryable",
			err:  ErrTransportTimeout,
			want: true,
		},
		{
			name: "transport read retryable",
			err:  ErrTransportRead,
			want: true,
		},
		{
			name: "transport write retryable",
			err:  ErrTransportWrite,
			want: true,
		},
		{
			name: "short write retryable",
			err:  ErrShortWrite,
			want: true,
		},
		{
			name: "transport closed not retryable",
			err:  ErrTransportClosed,
			want: false,
		},
		{
			name: "checksum mismatch not retryable",
			err:  ErrChecksumMismatch,
			want: false,
		},
		{
			name: "wrapped retryable error",
			err:  errors.New("outer: " + ErrTransportTimeout.Error()),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IsRetryable(tt.err)
			if got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable_TransportError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		transport *TransportError
		name      string
		want      bool
	}{
		{
			name: "transport error retryable=true",
			transport: &TransportError{
				Err:       errors.New("test error"),
				Op:        "read",
				Port:      "/dev/ttyACM0",
				Type:      ErrorTypeTransient,
				Retryable: true,
			},
			want: true,
		},
		{
			name: "transport error with retryable underlying error but retryable=false",
			transport: &TransportError{
				Err:       ErrTransportTimeout,
				Op:        "read",
				Port:      "/dev/ttyACM0",
				Type:      ErrorTypeTimeout,
				Retryable: false,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IsRetryable(tt.transport)
			if got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{name: "nil error", err: nil, want: ErrorTypePermanent},
		{name: "transport timeout", err: ErrTransportTimeout, want: ErrorTypeTimeout},
		{name: "transport read", err: ErrTransportRead, want: ErrorTypeTransient},
		{name: "transport write", err: ErrTransportWrite, want: ErrorTypeTransient},
		{name: "transport closed", err: ErrTransportClosed, want: ErrorTypePermanent},
		{name: "timeout error", err: NewTimeoutError("read", "/dev/ttyACM0"), want: ErrorTypeTimeout},
		{name: "unknown error", err: errors.New("unknown error"), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := GetErrorType(tt.err)
			if got != tt.want {
				t.Errorf("GetErrorType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		te   *TransportError
		want []string // Substrings that should be present
	}{
		{
			name: "with port",
			te: &TransportError{
				Err:  errors.New("connection failed"),
				Op:   "read",
				Port: "/dev/ttyACM0",
			},
			want: []string{"read", "/dev/ttyACM0", "connection failed"},
		},
		{
			name: "without port",
			te: &TransportError{
				Err: errors.New("device busy"),
				Op:  "write",
			},
			want: []string{"write", "device busy"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.te.Error()
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Error() = %q, should contain %q", got, substr)
				}
			}
		})
	}
}

func TestNewTimeoutError(t *testing.T) {
	t.Parallel()
	te := NewTimeoutError("read", "/dev/ttyACM0")

	assert.Equal(t, "read", te.Op)
	assert.Equal(t, "/dev/ttyACM0", te.Port)
	assert.Equal(t, ErrorTypeTimeout, te.Type)
	assert.True(t, te.Retryable, "Retryable should be true for timeout errors")
	assert.ErrorIs(t, te, ErrTransportTimeout)
}
