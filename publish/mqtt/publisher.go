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

// Package mqtt forwards decoded UI Board packets to an MQTT broker as JSON
package mqtt

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	jsoniter "github.com/json-iterator/go"

	uib "github.com/ZaparooProject/go-uib"
)

const (
	defaultTimeout = 5 * time.Second
	quiesceMillis  = 250
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotConnected is returned by Publish before Connect or after Close
var ErrNotConnected = errors.New("mqtt: not connected")

// Config configures a Publisher
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Timeout  time.Duration
	QoS      byte
	Retained bool
}

// client is the subset of paho.Client the publisher uses
type client interface {
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
	IsConnected() bool
}

// Publisher sends packets to <Topic>/<class>-<id>
type Publisher struct {
	client    client
	config    Config
	mu        sync.Mutex
	connected bool
}

// New creates a Publisher for cfg. It does not connect.
func New(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("mqtt: topic is required")
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt: invalid qos %d", cfg.QoS)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout).
		SetWriteTimeout(cfg.Timeout)

	return newPublisher(paho.NewClient(opts), cfg), nil
}

func newPublisher(c client, cfg Config) *Publisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Publisher{client: c, config: cfg}
}

// Connect connects to the broker
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return nil
	}
	if err := p.wait(p.client.Connect(), "connect"); err != nil {
		return err
	}
	p.connected = true
	return nil
}

// Publish renders pkt with Message and sends it
func (p *Publisher) Publish(pkt uib.Packet) error {
	payload, err := Message(pkt)
	if err != nil {
		return err
	}

	p.mu.Lock()
	connected := p.connected
	p.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	topic := Topic(p.config.Topic, pkt.Kind)
	token := p.client.Publish(topic, p.config.QoS, p.config.Retained, payload)
	return p.wait(token, "publish "+topic)
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return
	}
	p.client.Disconnect(quiesceMillis)
	p.connected = false
}

func (p *Publisher) wait(t paho.Token, op string) error {
	if !t.WaitTimeout(p.config.Timeout) {
		return fmt.Errorf("mqtt %s: timeout after %v", op, p.config.Timeout)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("mqtt %s: %w", op, err)
	}
	return nil
}

// Topic returns the topic a packet of kind is published to
func Topic(prefix string, kind uib.Kind) string {
	return fmt.Sprintf("%s/%02x-%02x", prefix, kind.Class, kind.ID)
}

type telemetryMessage struct {
	Version   uint8  `json:"version"`
	Time      uint64 `json:"time"`
	Latitude  int32  `json:"latitude"`
	Longitude int32  `json:"longitude"`
	Altitude  uint16 `json:"altitude"`
	Heading   int16  `json:"heading"`
	Voltage   uint16 `json:"voltage"`
	FixType   uint8  `json:"fix_type"`
}

type message struct {
	Telemetry *telemetryMessage `json:"telemetry,omitempty"`
	Kind      string            `json:"kind"`
	Payload   string            `json:"payload,omitempty"`
	Checksum  uint16            `json:"checksum"`
	Class     uint8             `json:"class"`
	ID        uint8             `json:"id"`
}

// Message renders pkt as JSON. Telemetry gets named fields; other payloads
// are sent as hex.
func Message(pkt uib.Packet) ([]byte, error) {
	if pkt.Payload == nil {
		return nil, errors.New("mqtt: packet has no payload")
	}

	msg := message{
		Kind:     pkt.Kind.String(),
		Class:    pkt.Kind.Class,
		ID:       pkt.Kind.ID,
		Checksum: pkt.Checksum,
	}

	if t, ok := pkt.Telemetry(); ok {
		msg.Telemetry = &telemetryMessage{
			Version:   t.Version,
			Time:      t.Time,
			Latitude:  t.Latitude,
			Longitude: t.Longitude,
			Altitude:  t.Altitude,
			Heading:   t.Heading,
			Voltage:   t.Voltage,
			FixType:   t.FixType,
		}
	} else {
		raw, err := pkt.Payload.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("mqtt: marshal payload: %w", err)
		}
		msg.Payload = hex.EncodeToString(raw)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("mqtt: render message: %w", err)
	}
	return data, nil
}
