package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"meetscribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDirectoryAccess("test", f).Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBinary(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("fake-ffmpeg"))
	if r := CheckBinary("FFmpeg", "fake-ffmpeg", "audio"); !r.Passed {
		t.Fatalf("expected stub to resolve: %s", r.Detail)
	}
	if r := CheckBinary("FFmpeg", "definitely-not-installed-xyz", "audio"); r.Passed {
		t.Fatal("expected missing binary to fail")
	}
	if r := CheckBinary("FFmpeg", " ", "audio"); r.Passed || r.Detail != "command not configured" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestCheckArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "LOW test-access:test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithArchiveURL(srv.URL))
	if r := CheckArchive(context.Background(), cfg); !r.Passed {
		t.Fatalf("expected archive check to pass: %s", r.Detail)
	}

	cfg.Archive.SecretKey = "wrong"
	if r := CheckArchive(context.Background(), cfg); r.Passed {
		t.Fatal("expected archive check to fail with bad credentials")
	}

	cfg.Archive.AccessKey = ""
	if r := CheckArchive(context.Background(), cfg); r.Passed {
		t.Fatal("expected archive check to fail without credentials")
	}
}

func TestRunAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithArchiveURL(srv.URL), testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	results := RunAll(context.Background(), cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("nil config should produce no results")
	}
}
