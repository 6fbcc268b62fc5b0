package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	versionTimeout = 5 * time.Second
	ffprobeEnvVar  = "VIDMETA_FFPROBE"
)

// ProbeVersion runs binary with args and returns the first non-empty output
// line, e.g. "ffprobe version 7.1 Copyright ...".
func ProbeVersion(binary string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s version check timed out", binary)
		}
		return "", fmt.Errorf("%s version check failed: %w", binary, err)
	}
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%s printed no version", binary)
}

// ResolveFFprobePath picks the ffprobe binary: VIDMETA_FFPROBE wins, then the
// configured value, then "ffprobe" from PATH.
func ResolveFFprobePath(configured string) string {
	if env := strings.TrimSpace(os.Getenv(ffprobeEnvVar)); env != "" {
		return env
	}
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	return "ffprobe"
}
