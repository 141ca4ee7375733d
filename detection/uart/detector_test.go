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
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/go-uib/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func fakePorts() []*enumerator.PortDetails {
	return []*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "UIB01", Product: "FT232R"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "1546", PID: "01a7", Product: "u-blox GNSS receiver"},
		{Name: "/dev/ttyS0"},
		nil,
	}
}

func newFakeDetector(ports []*enumerator.PortDetails, err error) *detector {
	return &detector{list: func() ([]*enumerator.PortDetails, error) {
		return ports, err
	}}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		opts  *detection.Options
		name  string
		paths []string
	}{
		{
			name:  "default blocklist drops gnss receiver",
			opts:  &detection.Options{Blocklist: detection.DefaultBlocklist()},
			paths: []string{"/dev/ttyUSB0", "/dev/ttyS0"},
		},
		{
			name:  "usb only",
			opts:  &detection.Options{Blocklist: detection.DefaultBlocklist(), USBOnly: true},
			paths: []string{"/dev/ttyUSB0"},
		},
		{
			name:  "allow list",
			opts:  &detection.Options{Allowlist: []string{"1546:01A7"}},
			paths: []string{"/dev/ttyACM0"},
		},
		{
			name:  "ignore path",
			opts:  &detection.Options{IgnorePaths: []string{"/dev/ttyS0"}, USBOnly: false},
			paths: []string{"/dev/ttyUSB0", "/dev/ttyACM0"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			devices, err := newFakeDetector(fakePorts(), nil).Detect(context.Background(), tt.opts)
			require.NoError(t, err)

			paths := make([]string, 0, len(devices))
			for _, dev := range devices {
				paths = append(paths, dev.Path)
			}
			assert.Equal(t, tt.paths, paths)
		})
	}
}

func TestDetectDeviceInfo(t *testing.T) {
	t.Parallel()

	devices, err := newFakeDetector(fakePorts()[:1], nil).Detect(context.Background(), &detection.Options{})
	require.NoError(t, err)
	require.Len(t, devices, 1)

	dev := devices[0]
	assert.Equal(t, "uart", dev.Transport)
	assert.Equal(t, "/dev/ttyUSB0", dev.Path)
	assert.Equal(t, "0403:6001", dev.VIDPID)
	assert.Equal(t, "UIB01", dev.Serial)
	assert.Equal(t, "FT232R (/dev/ttyUSB0)", dev.Name)
	assert.Equal(t, "true", dev.Metadata["usb"])
}

func TestDetectNoDevices(t *testing.T) {
	t.Parallel()

	_, err := newFakeDetector(nil, nil).Detect(context.Background(), nil)
	assert.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestDetectEnumeratorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("enumeration failed")
	_, err := newFakeDetector(nil, boom).Detect(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestDetectCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFakeDetector(fakePorts(), nil).Detect(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransport(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "uart", New().Transport())
}
