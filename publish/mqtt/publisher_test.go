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

package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uib "github.com/ZaparooProject/go-uib"
)

type mockToken struct {
	err     error
	timeout bool
}

func (tok mockToken) Error() error                   { return tok.err }
func (tok mockToken) Wait() bool                     { return !tok.timeout }
func (tok mockToken) WaitTimeout(time.Duration) bool { return !tok.timeout }

func (mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type mockClient struct {
	connectToken paho.Token
	publishToken paho.Token
	messages     []published
	mu           sync.Mutex
	disconnects  int
}

func newMockClient() *mockClient {
	return &mockClient{connectToken: mockToken{}, publishToken: mockToken{}}
}

func (m *mockClient) Connect() paho.Token { return m.connectToken }

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := payload.([]byte)
	m.messages = append(m.messages, published{topic: topic, payload: data, qos: qos, retained: retained})
	return m.publishToken
}

func (m *mockClient) Disconnect(uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects++
}

func (*mockClient) IsConnected() bool { return true }

type rawPayload struct {
	data []byte
	kind uib.Kind
}

func (p rawPayload) Kind() uib.Kind                 { return p.kind }
func (p rawPayload) MarshalBinary() ([]byte, error) { return p.data, nil }

func telemetryPacket(t *testing.T) uib.Packet {
	t.Helper()

	tm, err := uib.NewTelemetry(uib.TelemetryFields{
		Time:      1_700_000_000,
		Latitude:  -33_856_784,
		Longitude: 151_215_297,
		Altitude:  58,
		Heading:   -900,
		Voltage:   12_600,
		FixType:   3,
	})
	require.NoError(t, err)
	return uib.Packet{Payload: tm, Kind: uib.TelemetryKind, Checksum: 0xBEEF}
}

func TestMessageTelemetry(t *testing.T) {
	t.Parallel()

	data, err := Message(telemetryPacket(t))
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "05:03", doc["kind"])
	assert.EqualValues(t, 5, doc["class"])
	assert.EqualValues(t, 3, doc["id"])
	assert.EqualValues(t, 0xBEEF, doc["checksum"])
	assert.NotContains(t, doc, "payload")

	telemetry, ok := doc["telemetry"].(map[string]interface{})
	require.True(t, ok, "telemetry object missing: %s", data)
	assert.EqualValues(t, 1, telemetry["version"])
	assert.EqualValues(t, 1_700_000_000, telemetry["time"])
	assert.EqualValues(t, -33_856_784, telemetry["latitude"])
	assert.EqualValues(t, 151_215_297, telemetry["longitude"])
	assert.EqualValues(t, 58, telemetry["altitude"])
	assert.EqualValues(t, -900, telemetry["heading"])
	assert.EqualValues(t, 12_600, telemetry["voltage"])
	assert.EqualValues(t, 3, telemetry["fix_type"])
}

func TestMessageOtherPayload(t *testing.T) {
	t.Parallel()

	pkt := uib.Packet{
		Payload: rawPayload{kind: uib.Kind{Class: 0x04, ID: 0x01}, data: []byte{0xDE, 0xAD}},
		Kind:    uib.Kind{Class: 0x04, ID: 0x01},
	}
	data, err := Message(pkt)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "dead", doc["payload"])
	assert.Equal(t, "04:01", doc["kind"])
	assert.NotContains(t, doc, "telemetry")
}

func TestMessageNilPayload(t *testing.T) {
	t.Parallel()

	_, err := Message(uib.Packet{})
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "uib/05-03", Topic("uib", uib.TelemetryKind))
	assert.Equal(t, "car/uib/0a-ff", Topic("car/uib", uib.Kind{Class: 0x0A, ID: 0xFF}))
}

func TestPublish(t *testing.T) {
	t.Parallel()

	mock := newMockClient()
	pub := newPublisher(mock, Config{Topic: "uib", QoS: 1})

	require.ErrorIs(t, pub.Publish(telemetryPacket(t)), ErrNotConnected)

	require.NoError(t, pub.Connect())
	require.NoError(t, pub.Publish(telemetryPacket(t)))

	require.Len(t, mock.messages, 1)
	msg := mock.messages[0]
	assert.Equal(t, "uib/05-03", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.False(t, msg.retained)

	want, err := Message(telemetryPacket(t))
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(msg.payload))

	pub.Close()
	pub.Close()
	assert.Equal(t, 1, mock.disconnects)
	assert.ErrorIs(t, pub.Publish(telemetryPacket(t)), ErrNotConnected)
}

func TestPublishErrors(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")

	mock := newMockClient()
	mock.connectToken = mockToken{err: refused}
	pub := newPublisher(mock, Config{Topic: "uib"})
	assert.ErrorIs(t, pub.Connect(), refused)

	mock = newMockClient()
	mock.connectToken = mockToken{timeout: true}
	pub = newPublisher(mock, Config{Topic: "uib", Timeout: time.Millisecond})
	err := pub.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")

	mock = newMockClient()
	mock.publishToken = mockToken{err: refused}
	pub = newPublisher(mock, Config{Topic: "uib"})
	require.NoError(t, pub.Connect())
	assert.ErrorIs(t, pub.Publish(telemetryPacket(t)), refused)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no broker", cfg: Config{Topic: "uib"}},
		{name: "no topic", cfg: Config{Broker: "tcp://localhost:1883"}},
		{name: "bad qos", cfg: Config{Broker: "tcp://localhost:1883", Topic: "uib", QoS: 3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}

	pub, err := New(Config{Broker: "tcp://localhost:1883", Topic: "uib", ClientID: "test"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, pub.config.Timeout)
}
