// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/fwconsole/lib/codec"
)

func TestJSONCommandWireShape(t *testing.T) {
	frame, err := JSON.Encode(Command("dmz", "ping 10.0.0.5"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"event":"command","data":{"terminal":"dmz","command":"ping 10.0.0.5"}}`
	if string(frame) != want {
		t.Errorf("frame = %s\nwant    %s", frame, want)
	}
}

func TestJSONPayloadlessRequestsOmitData(t *testing.T) {
	for _, message := range []Message{GetLogs(), GetRawLogs(), GetRules(), ClearLogs()} {
		frame, err := JSON.Encode(message)
		if err != nil {
			t.Fatalf("Encode(%s): %v", message.Event, err)
		}
		want := `{"event":"` + message.Event + `"}`
		if string(frame) != want {
			t.Errorf("frame = %s, want %s", frame, want)
		}
	}
}

func TestCBORPayloadlessRequestHasNoData(t *testing.T) {
	frame, err := CBOR.Encode(GetRules())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded map[string]any
	if err := codec.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["data"]; ok {
		t.Errorf("CBOR get_rules carries data: %v", decoded)
	}
	if decoded["event"] != EventGetRules {
		t.Errorf("event = %v", decoded["event"])
	}
}

func TestCBORLoadRulesRoundTrip(t *testing.T) {
	script := "# INPUT Chain\niptables -A INPUT -s 192.168.20.0/24 -j DROP\n\n"
	frame, err := CBOR.Encode(LoadRulesFromScript(script))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	envelope, err := CBOR.Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if envelope.Event != EventLoadRulesFromScript {
		t.Fatalf("event = %q", envelope.Event)
	}
	var request LoadRulesRequest
	if err := envelope.Decode(&request); err != nil {
		t.Fatalf("Decode payload: %v", err)
	}
	if request.Script != script {
		t.Errorf("script = %q, want byte-identical %q", request.Script, script)
	}
}

func TestParseLogsData(t *testing.T) {
	frame := []byte(`{"event":"logs_data","data":{
		"logs":[{"timestamp":"2026-03-01 10:00:00","action":"DROP","source":"192.168.20.5",
		         "destination":"192.168.30.10","protocol":"tcp","port":80,"rule":"INPUT #2",
		         "category":"normal","warning":null,"details":"DROP traffic"}],
		"stats":{"total":1,"blocked":1,"allowed":0,"warnings":0},
		"warnings":[{"type":"CONFLICT","chain":"INPUT","rules":[1,2],"message":"Rules 1 and 2 in INPUT chain conflict"}]}}`)
	envelope, err := JSON.Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	event, err := Parse(envelope)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, ok := event.(LogsData)
	if !ok {
		t.Fatalf("Parse returned %T", event)
	}
	if len(data.Logs) != 1 || data.Logs[0].Action != ActionDrop {
		t.Fatalf("logs = %+v", data.Logs)
	}
	if data.Logs[0].Port != "80" {
		t.Errorf("numeric port decoded as %q", data.Logs[0].Port)
	}
	if data.Logs[0].Warning != "" {
		t.Errorf("null warning decoded as %q", data.Logs[0].Warning)
	}
	if data.Stats == nil || data.Stats.Total != 1 || data.Stats.Blocked != 1 {
		t.Errorf("stats = %+v", data.Stats)
	}
	if len(data.Warnings) != 1 || data.Warnings[0].Rules[1] != 2 {
		t.Errorf("warnings = %+v", data.Warnings)
	}
}

func TestParseEveryServerEventOverCBOR(t *testing.T) {
	tests := []struct {
		event string
		data  any
		check func(t *testing.T, event Event)
	}{
		{EventConnected, Connected{Data: "Connected to firewall simulator"}, func(t *testing.T, event Event) {
			if event.(Connected).Data != "Connected to firewall simulator" {
				t.Errorf("connected = %+v", event)
			}
		}},
		{EventSessionInitialized, map[string]any{"lifetime": 2700.0}, func(t *testing.T, event Event) {
			if event.(SessionInitialized).Lifetime != 2700 {
				t.Errorf("lifetime = %v", event)
			}
		}},
		{EventOutput, Output{Terminal: "dmz", Output: "PING 10.0.0.5\n"}, func(t *testing.T, event Event) {
			if event.(Output).Terminal != "dmz" {
				t.Errorf("output = %+v", event)
			}
		}},
		{EventClear, Clear{Terminal: "insider"}, func(t *testing.T, event Event) {
			if event.(Clear).Terminal != "insider" {
				t.Errorf("clear = %+v", event)
			}
		}},
		{EventUpdateIPDisplay, map[string]any{"terminal": "outsider", "ip": "192.168.20.7", "network": nil}, func(t *testing.T, event Event) {
			update := event.(UpdateIPDisplay)
			if update.IP != "192.168.20.7" || update.Network != "" {
				t.Errorf("update = %+v", update)
			}
		}},
		{EventNewLog, map[string]any{"action": "ACCEPT", "port": uint64(443)}, func(t *testing.T, event Event) {
			entry := event.(NewLog).Entry
			if entry.Action != ActionAccept || entry.Port != "443" {
				t.Errorf("new_log = %+v", entry)
			}
		}},
		{EventRawLogsData, RawLogsData{Logs: "# Firewall Logs Export\n"}, func(t *testing.T, event Event) {
			if event.(RawLogsData).Logs != "# Firewall Logs Export\n" {
				t.Errorf("raw = %+v", event)
			}
		}},
		{EventRulesData, RulesData{Rules: "iptables -A INPUT -j DROP\n"}, func(t *testing.T, event Event) {
			if event.(RulesData).Rules != "iptables -A INPUT -j DROP\n" {
				t.Errorf("rules = %+v", event)
			}
		}},
		{EventError, ServerError{Message: "no session"}, func(t *testing.T, event Event) {
			if event.(ServerError).Message != "no session" {
				t.Errorf("error = %+v", event)
			}
		}},
	}

	for _, test := range tests {
		t.Run(test.event, func(t *testing.T) {
			frame, err := CBOR.Encode(Message{Event: test.event, Data: test.data})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			envelope, err := CBOR.Decode(frame)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			event, err := Parse(envelope)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if event.EventName() != test.event {
				t.Fatalf("EventName() = %q, want %q", event.EventName(), test.event)
			}
			test.check(t, event)
		})
	}
}

func TestParseUnknownEvent(t *testing.T) {
	envelope, err := JSON.Decode([]byte(`{"event":"telemetry","data":{}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := Parse(envelope); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("Parse error = %v, want ErrUnknownEvent", err)
	}
}

func TestParseMissingPayload(t *testing.T) {
	for _, frame := range []string{`{"event":"logs_data"}`, `{"event":"rules_data","data":null}`} {
		envelope, err := JSON.Decode([]byte(frame))
		if err != nil {
			t.Fatalf("Decode(%s): %v", frame, err)
		}
		if _, err := Parse(envelope); !errors.Is(err, ErrNoPayload) {
			t.Errorf("Parse(%s) error = %v, want ErrNoPayload", frame, err)
		}
	}
}

func TestParseNewLogWithoutPayloadStillTriggers(t *testing.T) {
	envelope, err := JSON.Decode([]byte(`{"event":"new_log"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	event, err := Parse(envelope)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := event.(NewLog); !ok {
		t.Errorf("Parse returned %T", event)
	}
}

func TestParseRejectsNegativeLifetime(t *testing.T) {
	envelope, err := JSON.Decode([]byte(`{"event":"session_initialized","data":{"lifetime":-1}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := Parse(envelope); err == nil {
		t.Error("Parse accepted a negative lifetime")
	}
}

func TestDecodeRejectsMalformedEnvelopes(t *testing.T) {
	if _, err := JSON.Decode([]byte(`not json`)); err == nil {
		t.Error("JSON accepted garbage")
	}
	if _, err := JSON.Decode([]byte(`{"data":{}}`)); err == nil {
		t.Error("JSON accepted an envelope without event")
	}
	if _, err := CBOR.Decode([]byte{0xff, 0x00}); err == nil {
		t.Error("CBOR accepted garbage")
	}
}

func TestPortRejectsFractions(t *testing.T) {
	envelope, err := JSON.Decode([]byte(`{"event":"logs_data","data":{"logs":[{"port":80.5}]}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var data LogsData
	if err := envelope.Decode(&data); err == nil {
		t.Errorf("fractional port accepted: %+v", data.Logs)
	}
}

func TestCodecSelection(t *testing.T) {
	selected, err := CodecForSubprotocol("")
	if err != nil || selected != JSON {
		t.Errorf("empty subprotocol selected %v, %v; want JSON", selected, err)
	}
	selected, err = CodecForSubprotocol(SubprotocolCBOR)
	if err != nil || selected != CBOR {
		t.Errorf("cbor subprotocol selected %v, %v", selected, err)
	}
	if _, err := CodecForSubprotocol("chat"); err == nil {
		t.Error("unknown subprotocol accepted")
	}

	if byName, err := CodecByName("cbor"); err != nil || byName != CBOR {
		t.Errorf("CodecByName(cbor) = %v, %v", byName, err)
	}
	if _, err := CodecByName("xml"); err == nil {
		t.Error("CodecByName(xml) succeeded")
	}

	offered := Subprotocols(CBOR)
	if len(offered) != 2 || offered[0] != SubprotocolCBOR || offered[1] != SubprotocolJSON {
		t.Errorf("Subprotocols(CBOR) = %v", offered)
	}
}
