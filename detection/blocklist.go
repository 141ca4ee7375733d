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

package detection

import (
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns USB serial devices that are never a UI Board.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"1546:01A7", // u-blox GNSS receiver, speaks NMEA/UBX on its own port
		"1546:01A8",
		"2341:0043", // Arduino Uno bootloader
	}
}

// IsBlocked reports whether vidpid appears in list. It is also used to
// check allow lists.
func IsBlocked(vidpid string, blocklist []string) bool {
	// Normalize to uppercase for comparison
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))

	for _, blocked := range blocklist {
		blocked = strings.ToUpper(strings.TrimSpace(blocked))
		if vidpid == blocked {
			return true
		}
	}
	return false
}

var (
	vidLabels = []string{"VID:", "VID_", "VENDOR=", "VID="}
	pidLabels = []string{"PID:", "PID_", "PRODUCT=", "PID="}
)

// ParseVIDPID extracts VID:PID from a USB descriptor such as
// "VID:1234 PID:5678", "USB\VID_1234&PID_5678", "vendor=1234 product=5678"
// or plain "1234:5678". It returns "" when none match.
func ParseVIDPID(descriptor string) string {
	descriptor = strings.ToUpper(descriptor)

	vid := labelledHex(descriptor, vidLabels)
	pid := labelledHex(descriptor, pidLabels)
	if vid != "" && pid != "" {
		return vid + ":" + pid
	}

	if before, after, ok := strings.Cut(descriptor, ":"); ok && isHex(before) && isHex(after) {
		return descriptor
	}
	return ""
}

// FormatVIDPID joins separate vendor and product IDs as enumerators report
// them ("0403", "6001") into "0403:6001". It returns "" if either is empty.
func FormatVIDPID(vid, pid string) string {
	vid = strings.ToUpper(strings.TrimSpace(vid))
	pid = strings.ToUpper(strings.TrimSpace(pid))
	if !isHex(vid) || !isHex(pid) {
		return ""
	}
	return vid + ":" + pid
}

func labelledHex(s string, labels []string) string {
	for _, label := range labels {
		if idx := strings.Index(s, label); idx >= 0 {
			return leadingHex(s[idx+len(label):])
		}
	}
	return ""
}

// leadingHex returns the first run of hex digits in s
func leadingHex(s string) string {
	start := strings.IndexFunc(s, isHexRune)
	if start < 0 {
		return ""
	}
	s = s[start:]
	if end := strings.IndexFunc(s, func(r rune) bool { return !isHexRune(r) }); end >= 0 {
		return s[:end]
	}
	return s
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}

func isHex(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !isHexRune(r) }) < 0
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)

	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}

		normalizedIgnore := normalizedPath(ignorePath)

		if normalizedDevice == normalizedIgnore || devicePath == ignorePath {
			return true
		}
	}
	return false
}

// normalizedPath cleans path and folds case so COM3 matches com3
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
