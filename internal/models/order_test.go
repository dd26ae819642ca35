package models

import (
	"encoding/json"
	"testing"
)

func TestOrderAddressAcceptsStreet(t *testing.T) {
	var addr OrderAddress
	if err := json.Unmarshal([]byte(`{"name":"Ann","street":"1 Main St","city":"Springfield"}`), &addr); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if addr.Line1 != "1 Main St" || addr.City != "Springfield" {
		t.Fatalf("unexpected address: %+v", addr)
	}

	if err := json.Unmarshal([]byte(`{"line1":"2 Oak Ave","street":"ignored"}`), &addr); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if addr.Line1 != "2 Oak Ave" {
		t.Fatalf("line1 should win over street, got %q", addr.Line1)
	}

	out, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, ok := fields["street"]; ok {
		t.Fatalf("street should not be persisted: %s", out)
	}
	if fields["line1"] != "2 Oak Ave" {
		t.Fatalf("unexpected line1: %s", out)
	}
}
