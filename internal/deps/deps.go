package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary and how to ask it for a version.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArgs, when set, are passed to the binary to capture a version line.
	VersionArgs []string
}

// Status is the outcome of checking one Requirement. Command holds the resolved
// path when the binary was found.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Version     string
	Detail      string
}

// CheckBinaries checks each requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// Check resolves req.Command on PATH and, when VersionArgs is set, runs it to
// confirm the binary actually executes.
func Check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}

	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command = resolved

	if len(req.VersionArgs) == 0 {
		status.Available = true
		return status
	}
	version, err := ProbeVersion(resolved, req.VersionArgs...)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Available = true
	status.Version = version
	return status
}
