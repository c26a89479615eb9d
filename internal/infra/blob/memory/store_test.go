package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"fleetcore/internal/blob/core"
)

func TestPutGetHead(t *testing.T) {
	st := New()
	ctx := context.Background()
	info, err := st.Put(ctx, "a/b.csv", strings.NewReader("payload"), core.PutOptions{ContentType: "text/csv", Metadata: map[string]string{"kind": "export"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("payload")) {
		t.Fatalf("unexpected size %d", info.Size)
	}
	head, err := st.Head(ctx, "a/b.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType != "text/csv" || head.Metadata["kind"] != "export" {
		t.Fatalf("unexpected head info %+v", head)
	}
	_, rc, err := st.Get(ctx, "a/b.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "payload" {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestPutComputesETagAndURL(t *testing.T) {
	st := New()
	ctx := context.Background()
	info, err := st.Put(ctx, "exports/fleet.csv", strings.NewReader("id,name\n"), core.PutOptions{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(info.ETag) != 64 {
		t.Fatalf("expected sha256 etag, got %q", info.ETag)
	}
	if info.URL != "memory://exports/fleet.csv" {
		t.Fatalf("unexpected url %q", info.URL)
	}
	head, err := st.Head(ctx, "exports/fleet.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ETag != info.ETag {
		t.Fatalf("etag mismatch: %q vs %q", head.ETag, info.ETag)
	}
}

func TestPutRejectsBlankKey(t *testing.T) {
	st := New()
	for _, key := range []string{"", "   "} {
		if _, err := st.Put(context.Background(), key, strings.NewReader("v"), core.PutOptions{}); err == nil {
			t.Fatalf("expected put with key %q to fail", key)
		}
	}
}

func TestPutDuplicateFails(t *testing.T) {
	st := New()
	ctx := context.Background()
	if _, err := st.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := st.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put to fail")
	}
}

func TestDeleteAndList(t *testing.T) {
	st := New()
	ctx := context.Background()
	for _, k := range []string{"x/1", "x/2", "y/1"} {
		if _, err := st.Put(ctx, k, strings.NewReader("v"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := st.List(ctx, "x/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "x/1" || infos[1].Key != "x/2" {
		t.Fatalf("unexpected list %+v", infos)
	}
	ok, err := st.Delete(ctx, "x/1")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = st.Delete(ctx, "x/1")
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestPresignUnsupported(t *testing.T) {
	st := New()
	if _, err := st.PresignURL(context.Background(), "k", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestMetadataIsolated(t *testing.T) {
	st := New()
	ctx := context.Background()
	md := map[string]string{"a": "1"}
	if _, err := st.Put(ctx, "k", strings.NewReader("v"), core.PutOptions{Metadata: md}); err != nil {
		t.Fatalf("put: %v", err)
	}
	md["a"] = "mutated"
	head, err := st.Head(ctx, "k")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Metadata["a"] != "1" {
		t.Fatalf("metadata leaked caller mutation: %+v", head.Metadata)
	}
}
