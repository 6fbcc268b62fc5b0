package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteMedia creates a placeholder media file in dir and returns its path.
// Probe stubs never read the content, so a short marker is enough.
func WriteMedia(t testing.TB, dir, name string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("vidmeta-test-media\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", target, err)
	}
	return target
}

// FFprobeReportScript returns a shell script that answers -version, prints
// report for -show_format calls, duration for duration queries, and resolution
// for stream queries.
func FFprobeReportScript(report, duration, resolution string) string {
	return "#!/bin/sh\n" +
		"case \"$*\" in\n" +
		"  -version) echo 'ffprobe version 0.0-test' ;;\n" +
		"  *show_format*) cat <<'JSON'\n" + report + "\nJSON\n  ;;\n" +
		"  *format=duration*) echo '" + duration + "' ;;\n" +
		"  *stream=width,height*) echo '" + resolution + "' ;;\n" +
		"  *) echo 'unexpected args' >&2; exit 2 ;;\n" +
		"esac\n"
}
