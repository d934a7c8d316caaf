package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Commit
	Commit = "0123456789abcdef"
	defer func() { Commit = old }()

	i := Get()
	if i.Version != Version || i.Go != runtime.Version() {
		t.Errorf("Get() = %+v", i)
	}
	if got := i.ShortCommit(); got != "0123456" {
		t.Errorf("ShortCommit() = %q, want 0123456", got)
	}
	if got := (Info{Commit: "none"}).ShortCommit(); got != "none" {
		t.Errorf("ShortCommit(none) = %q", got)
	}
	if tpl := Template(); !strings.Contains(tpl, "commit: 0123456\n") {
		t.Errorf("Template() = %q", tpl)
	}
}
