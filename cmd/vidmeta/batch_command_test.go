package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"vidmeta/internal/testsupport"
)

func TestBatchContinueOnFailRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory())
	missing := filepath.Join(env.baseDir, "missing.mkv")
	stdin := `{"json":{"id":"a"},"source":"` + env.media + `"}` + "\n" +
		`{"json":{"id":"b"},"source":"` + missing + `"}` + "\n"

	out, _, err := runCLI(t, []string{"batch", "--continue-on-fail", "--operation", "getResolution", "--field", "probe"}, env.configPath, stdin)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 output lines, got %d: %s", len(lines), out)
	}

	var first, second struct {
		JSON map[string]any `json:"json"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	probe, ok := first.JSON["probe"].(map[string]any)
	if !ok || probe["quality"] != "Full HD" || first.JSON["id"] != "a" {
		t.Fatalf("unexpected first item %s", lines[0])
	}
	if _, ok := second.JSON["error"].(string); !ok || second.JSON["id"] != "b" {
		t.Fatalf("unexpected second item %s", lines[1])
	}

	out, _, err = runCLI(t, []string{"history", "list", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var entries []historyEntryView
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	statuses := map[string]bool{}
	for _, entry := range entries {
		statuses[string(entry.Status)] = true
		if entry.Operation != "getResolution" {
			t.Fatalf("unexpected operation %q", entry.Operation)
		}
	}
	if !statuses["ok"] || !statuses["failed"] {
		t.Fatalf("expected ok and failed entries, got %+v", entries)
	}

	out, _, err = runCLI(t, []string{"history", "list", "--run", entries[0].RunID, "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history list --run: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil || len(entries) != 2 || entries[0].ItemIndex != 0 {
		t.Fatalf("unexpected run entries %v %s", err, out)
	}
}

func TestBatchAbortsOnFirstFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	stdin := `{"json":{"n":1},"source":"` + env.media + `"}` + "\n" +
		`{"json":{"n":2}}` + "\n" +
		`{"json":{"n":3},"source":"` + env.media + `"}` + "\n"

	out, _, err := runCLI(t, []string{"batch", "--operation", "getDuration"}, env.configPath, stdin)
	if err == nil {
		t.Fatal("expected batch to fail")
	}
	requireContains(t, err.Error(), "item 1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the first item, got %d lines: %s", len(lines), out)
	}
	requireContains(t, lines[0], `"duration_formatted":"02:02:05"`)
}

func TestBatchRejectsUnknownOperation(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"batch", "--operation", "transcode"}, env.configPath, `{"json":{}}`)
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "unknown operation")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"history", "list"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected error when history disabled")
	}
	requireContains(t, err.Error(), "history is disabled")
}

func TestHistoryPruneKeepsForeverWhenRetentionZero(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory())
	env.cfg.History.RetentionDays = 0
	writeTestConfig(t, env.configPath, env.cfg)

	stdin := `{"json":{"id":"a"},"source":"` + env.media + `"}` + "\n"
	if _, _, err := runCLI(t, []string{"batch", "--operation", "getDuration"}, env.configPath, stdin); err != nil {
		t.Fatalf("batch: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "prune", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	var pruned struct {
		Removed int  `json:"removed"`
		Skipped bool `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &pruned); err != nil {
		t.Fatalf("decode prune: %v\n%s", err, out)
	}
	if pruned.Removed != 0 || !pruned.Skipped {
		t.Fatalf("unexpected prune result %s", out)
	}

	out, _, err = runCLI(t, []string{"history", "list", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var entries []historyEntryView
	if err := json.Unmarshal([]byte(out), &entries); err != nil || len(entries) != 1 {
		t.Fatalf("expected entry to survive prune, got %v %s", err, out)
	}

	out, _, err = runCLI(t, []string{"history", "prune", "--older-than", "0s", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history prune --older-than: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &pruned); err != nil || pruned.Removed != 1 {
		t.Fatalf("explicit prune should remove the entry, got %v %s", err, out)
	}
}
