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
	"encoding"
	"fmt"
	"sort"
	"sync"
)

// Kind identifies a payload type on the wire by its packet class and id
type Kind struct {
	Class byte
	ID    byte
}

func (k Kind) String() string {
	return fmt.Sprintf("%02X:%02X", k.Class, k.ID)
}

// Payload is a typed record carried inside a frame
type Payload interface {
	encoding.BinaryMarshaler

	// Kind returns the class/id pair written into the frame header
	Kind() Kind
}

// DecodeFunc rebuilds a payload from exactly the bytes a frame declared
type DecodeFunc func(data []byte) (Payload, error)

// Codec describes how to decode one payload kind
type Codec struct {
	Decode DecodeFunc
	Name   string
	// Length is the fixed encoded size. Zero means the kind is variable
	// length and the frame's payload_length is taken as-is.
	Length int
	Kind   Kind
}

// Registry maps payload kinds to codecs. It is safe for concurrent use.
type Registry struct {
	codecs map[Kind]Codec
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[Kind]Codec)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry with every built-in payload
// kind registered.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := defaultRegistry.Register(TelemetryCodec()); err != nil {
			panic(err)
		}
	})
	return defaultRegistry
}

// Register adds a codec. A kind can only be registered once.
func (r *Registry) Register(c Codec) error {
	if c.Decode == nil {
		return fmt.Errorf("codec %q for kind %s has no decoder", c.Name, c.Kind)
	}
	if c.Length < 0 || c.Length > maxPayloadLength {
		return fmt.Errorf("codec %q length %d out of range", c.Name, c.Length)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.codecs[c.Kind]; ok {
		return fmt.Errorf("kind %s (%s): %w", c.Kind, existing.Name, ErrDuplicateKind)
	}
	r.codecs[c.Kind] = c
	return nil
}

// Lookup returns the codec registered for k
func (r *Registry) Lookup(k Kind) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[k]
	return c, ok
}

// Kinds returns the registered kinds in ascending class/id order
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	kinds := make([]Kind, 0, len(r.codecs))
	for k := range r.codecs {
		kinds = append(kinds, k)
	}
	r.mu.RUnlock()

	sort.Slice(kinds, func(i, j int) bool {
		if kinds[i].Class != kinds[j].Class {
			return kinds[i].Class < kinds[j].Class
		}
		return kinds[i].ID < kinds[j].ID
	})
	return kinds
}
