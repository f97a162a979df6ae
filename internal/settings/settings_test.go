package settings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("root", "", "")
	fs.String("catalog", "tools.ini", "")
	fs.String("log-level", "info", "")
	fs.Bool("strict-hooks", false, "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	got, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Fatalf("settings (-want +got):\n%s", diff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("TOOLUPDATER_CATALOG", "env.ini")
	t.Setenv("TOOLUPDATER_STAGING", "env-updates")
	t.Setenv("TOOLUPDATER_STRICT_HOOKS", "true")

	fs := testFlags()
	if err := fs.Parse([]string{"--catalog", "flag.ini", "--log-level", "debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	got, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Catalog != "flag.ini" {
		t.Errorf("catalog = %q, want flag value", got.Catalog)
	}
	if got.Staging != "env-updates" {
		t.Errorf("staging = %q, want env value", got.Staging)
	}
	if !got.StrictHooks {
		t.Errorf("strict hooks not taken from env")
	}
	if got.LogLevel != "debug" {
		t.Errorf("log level = %q", got.LogLevel)
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Setenv("TOOLUPDATER_LOG_LEVEL", "loud")
	if _, err := Load(nil); err == nil {
		t.Fatal("expected invalid log level error")
	}
}
