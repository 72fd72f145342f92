package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/tokenledger/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"EventID", id.NewEventID, "evt_"},
		{"SnapshotID", id.NewSnapshotID, "snap_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixEvent)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixEvent {
		t.Errorf("expected prefix %q, got %q", id.PrefixEvent, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"EventID", id.NewEventID, id.ParseEventID},
		{"SnapshotID", id.NewSnapshotID, id.ParseSnapshotID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.newFn()
			parsed, err := tt.parseFn(orig.String())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if parsed.String() != orig.String() {
				t.Errorf("round trip mismatch: %q != %q", parsed.String(), orig.String())
			}
		})
	}
}

func TestParseWithPrefixMismatch(t *testing.T) {
	evt := id.NewEventID()
	if _, err := id.ParseSnapshotID(evt.String()); err == nil {
		t.Error("expected prefix mismatch error")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero value should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil ID should render empty, got %q", i.String())
	}
	v, err := i.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != nil {
		t.Errorf("nil ID should store NULL, got %v", v)
	}
}

func TestScan(t *testing.T) {
	orig := id.NewEventID()

	var scanned id.ID
	if err := scanned.Scan(orig.String()); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if scanned.String() != orig.String() {
		t.Errorf("scan mismatch: %q != %q", scanned.String(), orig.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("scanning nil should yield the Nil ID")
	}

	var bad id.ID
	if err := bad.Scan(42); err == nil {
		t.Error("expected error scanning unsupported type")
	}
}
