package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "vidmeta status")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if !view.ConfigExists || view.ConfigPath != env.configPath {
		t.Fatalf("unexpected config info %+v", view)
	}
	if len(view.Checks) == 0 {
		t.Fatal("expected checks")
	}
	for _, check := range view.Checks {
		if !check.Passed {
			t.Fatalf("check %s failed: %s", check.Name, check.Detail)
		}
	}
	if view.Checks[0].Detail != "ffprobe version 0.0-test" {
		t.Fatalf("unexpected ffprobe detail %q", view.Checks[0].Detail)
	}
}

func TestScratchClean(t *testing.T) {
	env := setupCLITestEnv(t)
	stale := filepath.Join(env.cfg.Paths.ScratchDir, "vidmeta-stale.mp4")
	if err := os.MkdirAll(env.cfg.Paths.ScratchDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"scratch", "clean", "--max-age", "2d"}, env.configPath, "")
	if err != nil {
		t.Fatalf("scratch clean: %v", err)
	}
	var result struct {
		Removed []string `json:"removed"`
		Skipped bool     `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(result.Removed) != 1 || result.Skipped {
		t.Fatalf("unexpected sweep result %+v", result)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale scratch file survived: %v", err)
	}
}

func TestParseAge(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{in: "36h", want: 36 * time.Hour, ok: true},
		{in: "7d", want: 7 * 24 * time.Hour, ok: true},
		{in: "90m", want: 90 * time.Minute, ok: true},
		{in: "-1h"},
		{in: "xd"},
		{in: "soon"},
	}
	for _, tc := range cases {
		got, err := parseAge(tc.in)
		if tc.ok != (err == nil) || (tc.ok && got != tc.want) {
			t.Fatalf("parseAge(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"logs"}, env.configPath, ""); err == nil {
		t.Fatal("expected error when file logging is disabled")
	}

	env.cfg.Logging.ToFile = true
	writeTestConfig(t, env.configPath, env.cfg)
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.cfg.LogFilePath(), []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath, "")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("unexpected logs output %q", out)
	}
}
