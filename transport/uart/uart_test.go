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

package uart

import (
	"errors"
	"testing"
	"time"

	uib "github.com/ZaparooProject/go-uib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// TestTransportCreation verifies basic transport properties
func TestTransportCreation(t *testing.T) {
	t.Parallel()

	testPortName := "/dev/ttyUSB0"
	transport := &Transport{
		portName: testPortName,
		mode:     &serial.Mode{BaudRate: DefaultBaudRate},
	}

	assert.Equal(t, testPortName, transport.PortName())
	assert.Equal(t, uib.TransportUART, transport.Type())
	assert.Equal(t, DefaultBaudRate, transport.BaudRate())
	assert.False(t, transport.IsConnected(), "uninitialized transport must not report connected")
}

func TestUnopenedTransport(t *testing.T) {
	t.Parallel()

	transport := &Transport{portName: "/dev/ttyUSB0"}

	_, err := transport.Write([]byte{0xE4, 0xEB})
	require.ErrorIs(t, err, uib.ErrTransportClosed)

	_, err = transport.Read(16, 10*time.Millisecond)
	require.ErrorIs(t, err, uib.ErrTransportClosed)

	assert.NoError(t, transport.Close())
}

func TestOptions(t *testing.T) {
	t.Parallel()

	transport := &Transport{mode: &serial.Mode{BaudRate: DefaultBaudRate}}
	WithBaudRate(57600)(transport)
	WithOpenTimeout(2 * time.Second)(transport)

	assert.Equal(t, 57600, transport.mode.BaudRate)
	assert.Equal(t, 2*time.Second, transport.openTimeout)

	WithBaudRate(0)(transport)
	assert.Equal(t, 57600, transport.mode.BaudRate, "non-positive baud is ignored")
}

func TestNewMissingPort(t *testing.T) {
	t.Parallel()

	_, err := New("/dev/uib-does-not-exist")
	require.Error(t, err)

	var te *uib.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "open", te.Op)
	assert.Equal(t, "/dev/uib-does-not-exist", te.Port)
	assert.False(t, uib.IsRetryable(err))
}

func TestNewMissingPortWithOpenTimeout(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := New("/dev/uib-does-not-exist", WithOpenTimeout(250*time.Millisecond))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	var te *uib.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "/dev/uib-does-not-exist", te.Port)
}

func TestIsTransientOpenError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isTransientOpenError(tt.err))
		})
	}
}
