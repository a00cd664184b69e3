package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	want := []byte("jpeg bytes")
	id, err := store.Write(want)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got, err := store.Read(id)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Read = %q, want %q", got, want)
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Read(id); err == nil {
		t.Error("Read succeeded after Delete")
	}
}

func TestDiskStoreDistinctIDs(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	a, err := store.Write([]byte("first"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	b, err := store.Write([]byte("second"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if a == b {
		t.Fatalf("both writes returned id %s", a)
	}

	got, err := store.Read(a)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("Read(%s) = %q, want %q", a, got, "first")
	}
}

func TestDiskStoreCapacity(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	id, err := store.Write([]byte("123456"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	_, err = store.Write([]byte("78901"))
	var exhausted *StorageExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want StorageExhaustedError", err)
	}
	if exhausted.Used != 6 || exhausted.Need != 5 {
		t.Errorf("used=%d need=%d, want used=6 need=5", exhausted.Used, exhausted.Need)
	}

	// Deleting frees the space for the retry.
	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Write([]byte("78901")); err != nil {
		t.Errorf("Write after Delete returned error: %v", err)
	}
}

func TestDiskStoreDeleteMissing(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}
	if err := store.Delete("no-such-id"); err != nil {
		t.Errorf("Delete of missing id returned error: %v", err)
	}
}
