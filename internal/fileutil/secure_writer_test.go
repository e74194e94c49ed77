package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSecureFileWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "best_order_1.json")

	w := NewSecureFileWriter()
	if err := w.WriteFile(path, []byte(`{"makespan":10}`)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestSecureFileWriter_WriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "best_order_2.json")

	doc := struct {
		Makespan int   `json:"makespan"`
		Order    []int `json:"order"`
	}{Makespan: 42, Order: []int{1, 2, 3}}

	w := NewSecureFileWriter()
	if err := w.WriteJSON(path, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), `"makespan": 42`) {
		t.Fatalf("expected marshaled makespan in output, got %s", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestSecureFileWriter_WriteJSON_RejectsUnmarshalable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")

	w := NewSecureFileWriter()
	if err := w.WriteJSON(path, make(chan int)); err == nil {
		t.Fatal("expected error marshaling an unsupported type")
	}
}

func TestSecureFileWriter_WriteFileWithMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "public.json")

	w := NewSecureFileWriter()
	if err := w.WriteFileWithMode(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFileWithMode: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Fatalf("expected mode 0644, got %v", info.Mode().Perm())
	}
}

func TestSecureFileWriter_EnsureSecurePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loose.json")

	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w := NewSecureFileWriter()
	if err := w.EnsureSecurePermissions(path); err != nil {
		t.Fatalf("EnsureSecurePermissions: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected mode tightened to 0600, got %v", info.Mode().Perm())
	}
}
