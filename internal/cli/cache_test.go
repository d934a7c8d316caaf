package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestCacheDir(t *testing.T) {
	c := New(io.Discard, LogInfo)

	c.Config.Cache.Dir = "/var/cache/nl"
	if dir, err := c.cacheDir(); err != nil || dir != "/var/cache/nl" {
		t.Errorf("cacheDir() = %q, %v; want configured dir", dir, err)
	}

	c.Config.Cache.Dir = ""
	dir, err := c.cacheDir()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if !strings.HasSuffix(dir, "numberline") {
		t.Errorf("cacheDir() = %q, should end with 'numberline'", dir)
	}
}

func TestCachePathCommand(t *testing.T) {
	c, cfg := newTestCLI(t)

	out, err := run(t, c, cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != "/cache" {
		t.Errorf("cache path = %q, want /cache", out)
	}
}

func TestCacheClearCommand(t *testing.T) {
	c, cfg := newTestCLI(t)

	out, err := run(t, c, cfg, "cache", "clear")
	if err != nil {
		t.Fatalf("clear empty cache: %v", err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on missing dir = %q", out)
	}

	if _, err := run(t, c, cfg, "--verbose", "render", dataset, "-f", "svg,json", "-o", "/out/line", "--metrics", "cells"); err != nil {
		t.Fatalf("render: %v", err)
	}

	out, err = run(t, c, cfg, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("cache clear = %q", out)
	}

	entries, _ := afero.ReadDir(c.fs, "/cache")
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("cache entry %s survived clear", e.Name())
		}
	}
}
