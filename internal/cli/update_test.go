package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"toolupdater/internal/archive"
	"toolupdater/internal/updater"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	outputJSON = false
	updateForce, updateDisableRepack, updateDisableClean, updateNoProgress = false, false, false, false

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	tree := t.TempDir()
	if err := os.WriteFile(filepath.Join(tree, "tool.exe"), []byte("tool 2.0"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	artifact := filepath.Join(t.TempDir(), "tool-2.0.zip")
	if err := archive.Pack(tree, artifact); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `Tool 2.0 is out: <a href="/files/tool-2.0.zip">get it</a>`)
	})
	mux.HandleFunc("/files/tool-2.0.zip", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, artifact)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestCatalog(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	root := t.TempDir()
	contents := strings.Join([]string{
		"[tool]",
		"url = " + srv.URL + "/page",
		`re_version = Tool (\d+\.\d+)`,
		`re_download = /files/[^"]+`,
		"update_url = " + srv.URL,
		"folder = bin/tool",
		"",
		"[gone]",
		"url = " + srv.URL + "/nowhere",
		`re_version = (\d+)`,
		"update_url = " + srv.URL + "/files/gone.zip",
		"folder = bin/gone",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(root, "tools.ini"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return root
}

func TestUpdateCommand(t *testing.T) {
	srv := newServer(t)
	root := writeTestCatalog(t, srv)

	stdout, stderr, err := runCLI(t, "update", "--root", root, "--no-progress", "--disable-repack")
	if err != nil {
		t.Fatalf("update returned error despite batch completing: %v", err)
	}
	for _, want := range []string{"TOOL", "tool", "updated", "gone", "failed", "1 updated, 0 up to date, 1 failed"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected stdout to contain %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "Failures:") || !strings.Contains(stderr, "gone (resolving)") {
		t.Errorf("expected failure report on stderr:\n%s", stderr)
	}
	data, err := os.ReadFile(filepath.Join(root, "bin", "tool", "tool.exe"))
	if err != nil || string(data) != "tool 2.0" {
		t.Fatalf("tool not installed: %q, %v", data, err)
	}

	stdout, _, err = runCLI(t, "update", "tool", "--root", root, "--json")
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	var summary updater.Summary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, stdout)
	}
	if len(summary.Results) != 1 || summary.Results[0].Outcome != updater.OutcomeUpToDate {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id in summary")
	}
}

func TestListCommand(t *testing.T) {
	srv := newServer(t)
	root := writeTestCatalog(t, srv)

	stdout, _, err := runCLI(t, "list", "--root", root, "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []listEntry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "tool" || entries[0].LocalVersion != "0" || entries[0].Source != "web" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if want := filepath.Join(root, "bin", "tool"); entries[0].Folder != want {
		t.Fatalf("folder = %q, want %q", entries[0].Folder, want)
	}
}

func TestCheckCommand(t *testing.T) {
	srv := newServer(t)
	root := writeTestCatalog(t, srv)

	stdout, _, err := runCLI(t, "check", "tool", "--root", root)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(stdout, "available") || !strings.Contains(stdout, "1 of 1 tools") {
		t.Fatalf("unexpected check output:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(root, "bin", "tool")); err == nil {
		t.Fatal("check must not install anything")
	}
}

func TestMissingCatalogFails(t *testing.T) {
	_, _, err := runCLI(t, "update", "--root", t.TempDir(), "--no-progress")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing catalog error, got %v", err)
	}
}
