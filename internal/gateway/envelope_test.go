package gateway

import (
	"encoding/json"
	"testing"
)

func TestEnvelope_HelloCarriesNullTypeAndSequence(t *testing.T) {
	data, err := json.Marshal(helloEnvelope())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if typ, ok := decoded["t"]; !ok || typ != nil {
		t.Errorf(`"t" = %v, want present and null`, typ)
	}
	if s, ok := decoded["s"]; !ok || s != nil {
		t.Errorf(`"s" = %v, want present and null`, decoded["s"])
	}
	if decoded["op"].(float64) != float64(OpHello) {
		t.Errorf("op = %v, want %d", decoded["op"], OpHello)
	}
}

func TestEnvelope_HeartbeatAckHasNullData(t *testing.T) {
	data, err := json.Marshal(heartbeatAckEnvelope())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d, ok := decoded["d"]; !ok || d != nil {
		t.Errorf(`"d" = %v, want present and null`, decoded["d"])
	}
	if decoded["op"].(float64) != float64(OpHeartbeatAck) {
		t.Errorf("op = %v, want %d", decoded["op"], OpHeartbeatAck)
	}
}

func TestEnvelope_InvalidSessionCarriesBooleanData(t *testing.T) {
	data, err := json.Marshal(invalidSessionEnvelope(true))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["d"] != true {
		t.Errorf("d = %v, want true", decoded["d"])
	}
	if decoded["op"].(float64) != float64(OpInvalidSession) {
		t.Errorf("op = %v, want %d", decoded["op"], OpInvalidSession)
	}
}
