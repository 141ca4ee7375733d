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
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	debugEnabled atomic.Bool
	debugLogger  atomic.Pointer[log.Logger]
)

func init() {
	debugLogger.Store(log.New(os.Stderr, "uib: ", log.LstdFlags|log.Lmicroseconds))
}

// SetDebugEnabled turns library debug output on or off
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether library debug output is on
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// SetDebugOutput redirects library debug output to w
func SetDebugOutput(w io.Writer) {
	debugLogger.Store(log.New(w, "uib: ", log.LstdFlags|log.Lmicroseconds))
}

func debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	_ = debugLogger.Load().Output(2, fmt.Sprintf(format, args...))
}

func debugln(args ...any) {
	if !debugEnabled.Load() {
		return
	}
	_ = debugLogger.Load().Output(2, fmt.Sprintln(args...))
}
