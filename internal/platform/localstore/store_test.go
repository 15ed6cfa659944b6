package localstore

import (
	"os"
	"path/filepath"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := store.PutJSON("userProfile", payload{Name: "Asha", Count: 3}); err != nil {
		t.Fatalf("unexpected error writing entry: %v", err)
	}

	var got payload
	ok, err := store.GetJSON("userProfile", &got)
	if err != nil {
		t.Fatalf("unexpected error reading entry: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry to exist")
	}
	if got.Name != "Asha" || got.Count != 3 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestStoreMissingEntryIsMiss(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	var got payload
	ok, err := store.GetJSON("userOrders", &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected miss for absent entry")
	}
}

func TestStoreCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "userProfile.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("unexpected error seeding corrupt entry: %v", err)
	}

	var got payload
	ok, err := store.GetJSON("userProfile", &got)
	if err != nil {
		t.Fatalf("expected corrupt entry to read as miss, got error: %v", err)
	}
	if ok {
		t.Fatalf("expected corrupt entry to read as miss")
	}
}

func TestStoreOverwriteReplacesEntry(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := store.PutJSON("cart_user-1", payload{Name: "first", Count: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.PutJSON("cart_user-1", payload{Name: "second", Count: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got payload
	ok, err := store.GetJSON("cart_user-1", &got)
	if err != nil || !ok {
		t.Fatalf("expected entry, ok=%v err=%v", ok, err)
	}
	if got.Name != "second" || got.Count != 2 {
		t.Fatalf("expected latest write to win, got %+v", got)
	}
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := store.PutJSON("userOrders", payload{Name: "o"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete("userOrders"); err != nil {
		t.Fatalf("unexpected error deleting entry: %v", err)
	}
	if err := store.Delete("userOrders"); err != nil {
		t.Fatalf("expected second delete to be a no-op, got %v", err)
	}

	var got payload
	ok, err := store.GetJSON("userOrders", &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected entry to be gone")
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := store.PutJSON("   ", payload{}); err == nil {
		t.Fatalf("expected error for blank key")
	}
}
