package classify

import (
	"testing"

	"github.com/John-Robertt/sortify/internal/domain"
)

func TestFromLabel(t *testing.T) {
	cases := []struct {
		label string
		want  Category
	}{
		{"mp4", Video},
		{"mov", Video},
		{"flac", Audio},
		{"opus", Audio},
		{"png", Pictures},
		{"jpeg", Pictures},
		{"pdf", Documents},
		{"docx", Documents},
		{"7z", Archives},
		{"tgz", Archives},
		{"exe", Executables},
		{"mach-o", Executables},
		{"wasm", Executables},
		{"go", Code},
		{"json", Code},
		{"gitignore", Code},
		{domain.LabelMismatch, Mismatch},
		{domain.LabelUnknown, Uncategorized},
		{"definitely-not-a-type", Uncategorized},
		{"", Uncategorized},
	}
	for _, c := range cases {
		if got := FromLabel(c.label); got != c.want {
			t.Fatalf("FromLabel(%q)：期望 %s，实际 %s", c.label, c.want, got)
		}
	}
}

func TestDirName(t *testing.T) {
	if got := Mismatch.DirName(); got != "Check manually" {
		t.Fatalf("期望 Mismatch 目录名为 %q，实际 %q", "Check manually", got)
	}
	if got := Pictures.DirName(); got != "Pictures" {
		t.Fatalf("期望 %q，实际 %q", "Pictures", got)
	}
}
