package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"poms/internal/blob/core"
)

func TestStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	info, err := s.Put(ctx, "exports/poms_data_20250506.json", bytes.NewReader([]byte(`{"patients":[]}`)), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 15 || len(info.ETag) != 64 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(root, "exports", "poms_data_20250506.json.meta")); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}

	if _, err := s.Put(ctx, "exports/poms_data_20250506.json", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, rc, err := s.Get(ctx, "exports/poms_data_20250506.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"patients":[]}` || got.ContentType != "application/json" {
		t.Fatalf("get returned %q %+v", body, got)
	}

	list, err := s.List(ctx, "exports/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %+v %v", list, err)
	}

	if ok, err := s.Delete(ctx, "exports/poms_data_20250506.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := s.Head(ctx, "exports/poms_data_20250506.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, err := s.Delete(ctx, "exports/poms_data_20250506.json"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}

func TestRejectsUnsafeKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "/etc/passwd", "../escape", "a/../../b", "x.meta"} {
		if _, err := s.Put(context.Background(), key, bytes.NewReader(nil), core.PutOptions{}); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}
