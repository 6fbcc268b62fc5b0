package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteLimited(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")

	n, err := WriteLimited(dst, strings.NewReader("hello world"), 64)
	if err != nil {
		t.Fatalf("WriteLimited: %v", err)
	}
	if n != 11 {
		t.Fatalf("written = %d, want 11", n)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestWriteLimitedExactLimit(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "exact.bin")
	if _, err := WriteLimited(dst, strings.NewReader("12345"), 5); err != nil {
		t.Fatalf("expected limit-sized content to pass, got %v", err)
	}
}

func TestWriteLimitedRejectsOversize(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "big.bin")

	_, err := WriteLimited(dst, strings.NewReader("0123456789"), 4)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatalf("expected partial file removed, stat err=%v", statErr)
	}
}

func TestWriteLimitedRefusesExisting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "taken.bin")
	if err := os.WriteFile(dst, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteLimited(dst, strings.NewReader("y"), 0); err == nil {
		t.Fatal("expected error for existing destination")
	}
}

func TestReadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Readable(file); err != nil {
		t.Fatalf("Readable(file): %v", err)
	}
	if err := Readable(dir); err == nil {
		t.Fatal("expected directory to be rejected")
	}
	if err := Readable(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
