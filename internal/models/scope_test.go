package models

import "testing"

func TestContinentScopeStorageKey(t *testing.T) {
	if got := GlobalScope().StorageKey(); got != GlobalContinentKey {
		t.Errorf("global storage key = %d, want %d", got, GlobalContinentKey)
	}

	if got := ContinentScopeOf(4).StorageKey(); got != 4 {
		t.Errorf("continent storage key = %d, want 4", got)
	}
}

func TestScopeFromPtr(t *testing.T) {
	if !ScopeFromPtr(nil).IsGlobal() {
		t.Error("nil pointer should map to the global scope")
	}

	id := int64(2)
	scope := ScopeFromPtr(&id)
	if scope.IsGlobal() {
		t.Fatal("pointer should map to a continent scope")
	}
	if got, ok := scope.ContinentID(); !ok || got != 2 {
		t.Errorf("ContinentID() = (%d, %v), want (2, true)", got, ok)
	}
}

func TestScopeFromKeyRoundTrip(t *testing.T) {
	for _, key := range []int64{GlobalContinentKey, 0, 1, 6} {
		if got := ScopeFromKey(key).StorageKey(); got != key {
			t.Errorf("round trip of key %d produced %d", key, got)
		}
	}
}

func TestGlobalScopeHasNoContinent(t *testing.T) {
	if _, ok := GlobalScope().ContinentID(); ok {
		t.Error("global scope must not report a continent id")
	}
}

func TestScopeString(t *testing.T) {
	if got := GlobalScope().String(); got != "global" {
		t.Errorf("String() = %q, want %q", got, "global")
	}
	if got := ContinentScopeOf(5).String(); got != "5" {
		t.Errorf("String() = %q, want %q", got, "5")
	}
}
