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

// Package uart detects serial ports that may carry a UI Board
package uart

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/go-uib/detection"
	"go.bug.st/serial/enumerator"
)

// portLister is swapped out in tests
type portLister func() ([]*enumerator.PortDetails, error)

type detector struct {
	list portLister
}

// New creates a serial port detector backed by the system enumerator
func New() detection.Detector {
	return &detector{list: enumerator.GetDetailedPortsList}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// Detect lists serial ports and filters them with opts
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = detection.DefaultOptions()
	}

	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	devices := make([]detection.DeviceInfo, 0, len(ports))
	for _, port := range ports {
		if port == nil {
			continue
		}
		if opts.USBOnly && !port.IsUSB {
			continue
		}
		devices = append(devices, deviceInfo(port))
	}

	devices = detection.Filter(devices, opts)
	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func deviceInfo(port *enumerator.PortDetails) detection.DeviceInfo {
	info := detection.DeviceInfo{
		Transport: "uart",
		Path:      port.Name,
		Name:      port.Name,
		Metadata:  map[string]string{},
	}
	if !port.IsUSB {
		return info
	}

	info.VIDPID = detection.FormatVIDPID(port.VID, port.PID)
	info.Serial = port.SerialNumber
	info.Product = port.Product
	if info.Product != "" {
		info.Name = fmt.Sprintf("%s (%s)", port.Product, port.Name)
	}
	info.Metadata["usb"] = "true"
	if info.VIDPID != "" {
		info.Metadata["vidpid"] = info.VIDPID
	}
	return info
}
