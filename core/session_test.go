package core

import "testing"

func TestSession_SetAndGetState(t *testing.T) {
	s := NewSession("s1")

	s.SetState("a", 1)
	s.SetState("b", "x")

	if v, ok := s.GetState("a"); !ok || v.(int) != 1 {
		t.Fatalf("state not applied: %+v", s.State)
	}
	if _, ok := s.GetState("missing"); ok {
		t.Error("expected missing key to report absent")
	}
}

func TestSession_SnapshotIsDetached(t *testing.T) {
	s := NewSession("s2")
	s.SetState("a", "before")

	snap := s.Snapshot()
	s.SetState("a", "after")
	s.SetState("b", "new")

	if snap["a"] != "before" {
		t.Errorf("snapshot should keep fan-out value, got %v", snap["a"])
	}
	if _, ok := snap["b"]; ok {
		t.Error("snapshot should not see writes made after it was taken")
	}
}

func TestSession_MergeState(t *testing.T) {
	s := NewSession("s3")
	deltas := []map[string]any{
		{"tech": "t", "shared": "first"},
		{"health": "h"},
		{"shared": "last"},
	}

	collisions := s.MergeState(deltas)

	if len(collisions) != 1 || collisions[0] != "shared" {
		t.Fatalf("expected collision on shared, got %v", collisions)
	}
	if v, _ := s.GetState("shared"); v != "last" {
		t.Errorf("later delta should win, got %v", v)
	}
	if _, ok := s.GetState("tech"); !ok {
		t.Error("expected merged key tech")
	}
	if _, ok := s.GetState("health"); !ok {
		t.Error("expected merged key health")
	}
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("s4")
	s.SetState("a", 1)

	clone := s.Clone()
	if clone == s {
		t.Error("Clone should be a different pointer")
	}

	clone.SetState("c", 2)
	if _, exists := s.GetState("c"); exists {
		t.Error("original should not have clone's new key")
	}
}
