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

// Package detection finds serial ports a UI Board may be attached to.
//
// Detectors for each transport register themselves on import:
//
//	import _ "github.com/ZaparooProject/go-uib/detection/uart"
//
//	devices, err := detection.DetectAll(ctx, detection.DefaultOptions())
package detection

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNoDevicesFound is returned when no candidate port is left after filtering
	ErrNoDevicesFound = errors.New("no UI Board found")
	// ErrUnsupportedPlatform is returned when a detector cannot run here
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	// ErrNoDetectors is returned when DetectAll runs with nothing registered
	ErrNoDetectors = errors.New("no detectors registered")
)

// DeviceInfo describes a candidate port
type DeviceInfo struct {
	Metadata  map[string]string
	Transport string
	Path      string
	Name      string
	VIDPID    string
	Serial    string
	Product   string
}

// Options controls filtering of detected ports
type Options struct {
	// Blocklist entries are VID:PID strings never reported
	Blocklist []string
	// Allowlist, if non-empty, keeps only ports whose VID:PID is listed
	Allowlist []string
	// IgnorePaths drops ports by device path
	IgnorePaths []string
	// Timeout bounds a single DetectAll call
	Timeout time.Duration
	// USBOnly drops ports that are not USB adapters
	USBOnly bool
}

// DefaultOptions returns the options used by the commands
func DefaultOptions() *Options {
	return &Options{
		Blocklist: DefaultBlocklist(),
		Timeout:   2 * time.Second,
	}
}

// Detector lists candidate ports for one transport
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	detectors  = map[string]Detector{}
)

// RegisterDetector makes a detector available to DetectAll. A later
// registration for the same transport replaces the earlier one.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	detectors[d.Transport()] = d
}

func registered() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(detectors))
	for name := range detectors {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Detector, 0, len(names))
	for _, name := range names {
		out = append(out, detectors[name])
	}
	return out
}

// DetectAll runs every registered detector and returns the ports that pass
// opts. Detectors reporting ErrUnsupportedPlatform are skipped.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	list := registered()
	if len(list) == 0 {
		return nil, ErrNoDetectors
	}

	var (
		found   []DeviceInfo
		lastErr error
	)
	for _, d := range list {
		devices, err := d.Detect(ctx, opts)
		if errors.Is(err, ErrUnsupportedPlatform) {
			continue
		}
		if err != nil {
			lastErr = err
			continue
		}
		found = append(found, devices...)
	}

	if len(found) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNoDevicesFound
	}
	return found, nil
}

// Filter applies the block, allow and ignore lists in opts to devices
func Filter(devices []DeviceInfo, opts *Options) []DeviceInfo {
	if opts == nil {
		return devices
	}
	out := make([]DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		if dev.VIDPID != "" && IsBlocked(dev.VIDPID, opts.Blocklist) {
			continue
		}
		if len(opts.Allowlist) > 0 && !IsBlocked(dev.VIDPID, opts.Allowlist) {
			continue
		}
		if IsPathIgnored(dev.Path, opts.IgnorePaths) {
			continue
		}
		out = append(out, dev)
	}
	return out
}
