package updater

import (
	"os"
	"path/filepath"
	"testing"

	"toolupdater/internal/catalog"
)

func TestNormalize(t *testing.T) {
	mkdir := func(t *testing.T, p string) {
		t.Helper()
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	touch := func(t *testing.T, p string) {
		t.Helper()
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		wantSub string
	}{
		{
			name:  "empty",
			setup: func(*testing.T, string) {},
		},
		{
			name: "single directory collapses",
			setup: func(t *testing.T, dir string) {
				mkdir(t, filepath.Join(dir, "tool-1.1", "bin"))
			},
			wantSub: "tool-1.1",
		},
		{
			name: "single file stays",
			setup: func(t *testing.T, dir string) {
				touch(t, filepath.Join(dir, "tool.exe"))
			},
		},
		{
			name: "directory and file",
			setup: func(t *testing.T, dir string) {
				mkdir(t, filepath.Join(dir, "tool"))
				touch(t, filepath.Join(dir, "readme.txt"))
			},
		},
		{
			name: "two directories",
			setup: func(t *testing.T, dir string) {
				mkdir(t, filepath.Join(dir, "a"))
				mkdir(t, filepath.Join(dir, "b"))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			tc.setup(t, dir)
			got, err := Normalize(dir)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			want := dir
			if tc.wantSub != "" {
				want = filepath.Join(dir, tc.wantSub)
			}
			if got != want {
				t.Fatalf("Normalize = %q, want %q", got, want)
			}
		})
	}
}

func TestRepackName(t *testing.T) {
	tests := []struct {
		tool, version, want string
	}{
		{"tool", "v1.2/rc", "tool - v1.2_rc.zip"},
		{"vendor/tool", "1.0", "vendor_tool - 1.0.zip"},
		{`sys:internals\pkg`, "2024-01", "sys_internals_pkg - 2024-01.zip"},
	}
	for _, tc := range tests {
		if got := RepackName(tc.tool, tc.version); got != tc.want {
			t.Errorf("RepackName(%q, %q) = %q, want %q", tc.tool, tc.version, got, tc.want)
		}
	}
}

func TestRepackToolNameWithSeparator(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(root, "updates")
	src := filepath.Join(staging, "tool")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "tool.exe"), []byte("exe"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	in := installer{root: root, staging: staging}
	spec := catalog.ToolSpec{Name: "vendor/tool", InstallPath: "bin"}
	target, err := in.install(src, spec, "1.0", Options{Repack: true, Clean: true})
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "vendor_tool - 1.0.zip")); err != nil {
		t.Fatalf("expected repacked archive in %s: %v", target, err)
	}
}

func TestWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work")
	tests := []struct {
		dir, p string
		want   bool
	}{
		{root, root, true},
		{root, filepath.Join(root, "updates"), true},
		{filepath.Join(root, "tools"), filepath.Join(root, "updates"), false},
		{filepath.Join(root, "tools"), filepath.Join(root, "tools..bak"), false},
	}
	for _, tc := range tests {
		if got := within(tc.dir, tc.p); got != tc.want {
			t.Errorf("within(%q, %q) = %v, want %v", tc.dir, tc.p, got, tc.want)
		}
	}
}
