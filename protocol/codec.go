// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/fwconsole/lib/codec"
)

// Websocket subprotocol names.
const (
	SubprotocolJSON = "fwsim.v1.json"
	SubprotocolCBOR = "fwsim.v1.cbor"
)

// Codec frames envelopes for one subprotocol.
type Codec interface {
	// Name is the configuration name: "json" or "cbor".
	Name() string
	// Subprotocol is the websocket subprotocol the codec answers to.
	Subprotocol() string
	// Binary reports whether frames are sent as binary messages.
	Binary() bool
	// Encode frames message as one envelope.
	Encode(message Message) ([]byte, error)
	// Decode parses one envelope, leaving the payload encoded.
	Decode(frame []byte) (Envelope, error)
}

var (
	// JSON is the default, interoperable framing.
	JSON Codec = jsonCodec{}
	// CBOR is the compact binary framing.
	CBOR Codec = cborCodec{}
)

// Codecs returns every codec, JSON first.
func Codecs() []Codec {
	return []Codec{JSON, CBOR}
}

// CodecByName returns the codec configured as name.
func CodecByName(name string) (Codec, error) {
	for _, candidate := range Codecs() {
		if candidate.Name() == name {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// CodecForSubprotocol returns the codec for the subprotocol a server
// selected. An empty selection means JSON.
func CodecForSubprotocol(subprotocol string) (Codec, error) {
	if subprotocol == "" {
		return JSON, nil
	}
	for _, candidate := range Codecs() {
		if candidate.Subprotocol() == subprotocol {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("server selected unknown subprotocol %q", subprotocol)
}

// Subprotocols lists the subprotocols to offer, preferred first.
func Subprotocols(preferred Codec) []string {
	result := []string{preferred.Subprotocol()}
	for _, candidate := range Codecs() {
		if candidate.Subprotocol() != preferred.Subprotocol() {
			result = append(result, candidate.Subprotocol())
		}
	}
	return result
}

// ErrNoPayload is returned by Envelope.Decode for an event that
// arrived without data.
var ErrNoPayload = errors.New("event carries no payload")

// Envelope is a framed event whose payload has not been decoded yet.
type Envelope struct {
	Event string

	payload   []byte
	unmarshal func([]byte, any) error
}

// HasPayload reports whether the envelope carried data.
func (e Envelope) HasPayload() bool {
	return len(e.payload) > 0
}

// Decode decodes the payload into v with the codec that framed it.
func (e Envelope) Decode(v any) error {
	if !e.HasPayload() {
		return fmt.Errorf("%s: %w", e.Event, ErrNoPayload)
	}
	return e.unmarshal(e.payload, v)
}

type jsonCodec struct{}

type jsonEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (jsonCodec) Name() string        { return "json" }
func (jsonCodec) Subprotocol() string { return SubprotocolJSON }
func (jsonCodec) Binary() bool        { return false }

func (jsonCodec) Encode(message Message) ([]byte, error) {
	envelope := jsonEnvelope{Event: message.Event}
	if message.Data != nil {
		data, err := json.Marshal(message.Data)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", message.Event, err)
		}
		envelope.Data = data
	}
	return json.Marshal(envelope)
}

func (jsonCodec) Decode(frame []byte) (Envelope, error) {
	var envelope jsonEnvelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("decoding JSON envelope: %w", err)
	}
	if envelope.Event == "" {
		return Envelope{}, errors.New("decoding JSON envelope: missing event name")
	}
	payload := []byte(envelope.Data)
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		payload = nil
	}
	return Envelope{Event: envelope.Event, payload: payload, unmarshal: json.Unmarshal}, nil
}

type cborCodec struct{}

type cborEnvelope struct {
	Event string           `json:"event"`
	Data  codec.RawMessage `json:"data"`
}

type cborBareEnvelope struct {
	Event string `json:"event"`
}

// cborNull is the encoding of CBOR null.
const cborNull = 0xf6

func (cborCodec) Name() string        { return "cbor" }
func (cborCodec) Subprotocol() string { return SubprotocolCBOR }
func (cborCodec) Binary() bool        { return true }

func (cborCodec) Encode(message Message) ([]byte, error) {
	if message.Data == nil {
		return codec.Marshal(cborBareEnvelope{Event: message.Event})
	}
	data, err := codec.Marshal(message.Data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", message.Event, err)
	}
	return codec.Marshal(cborEnvelope{Event: message.Event, Data: data})
}

func (cborCodec) Decode(frame []byte) (Envelope, error) {
	var envelope cborEnvelope
	if err := codec.Unmarshal(frame, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("decoding CBOR envelope: %w", err)
	}
	if envelope.Event == "" {
		return Envelope{}, errors.New("decoding CBOR envelope: missing event name")
	}
	payload := []byte(envelope.Data)
	if len(payload) == 1 && payload[0] == cborNull {
		payload = nil
	}
	return Envelope{Event: envelope.Event, payload: payload, unmarshal: codec.Unmarshal}, nil
}
