// Package czkawka runs the external czkawka_cli binary.
package czkawka

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Media selects which duplicate scan czkawka runs.
type Media string

const (
	MediaImages Media = "images"
	MediaVideos Media = "videos"
)

// MediaTargets expands a --media value into the ordered list of scans to run.
func MediaTargets(media string) []Media {
	if media == "both" {
		return []Media{MediaImages, MediaVideos}
	}
	return []Media{Media(media)}
}

// Czkawka exits 0 on a clean run and 11 when duplicates were found. Both are
// successful runs from the wrapper's point of view.
var successCodes = map[int]bool{0: true, 11: true}

// ScanOptions configures a single czkawka invocation.
type ScanOptions struct {
	HashSize        int    // Image perceptual hash size: 8, 16, 32 or 64
	ImageSimilarity string // Similarity preset, e.g. "High"
	HashAlg         string // Image hash algorithm, e.g. "Blockhash"
	ImageFilter     string // Image resize filter, e.g. "Catmullrom"
	VideoTolerance  int    // Video similarity tolerance, 0..20
}

// InvocationError reports a czkawka run whose output cannot be used: the
// binary is missing, the process could not start, or it exited with a code
// outside the success set.
type InvocationError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	var b strings.Builder
	b.WriteString("czkawka command failed")
	if len(e.Command) > 0 {
		fmt.Fprintf(&b, "\nCommand: %s", FormatCommand(e.Command))
	}
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, "\nExit code: %d", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", s)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", s)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, "\ncause: %v", e.Err)
	}
	return b.String()
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Result captures one finished czkawka run.
type Result struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs czkawka_cli commands.
type Executor struct {
	binaryPath string
}

// NewExecutor creates an executor that resolves czkawka_cli from PATH.
func NewExecutor() *Executor {
	return &Executor{binaryPath: "czkawka_cli"}
}

// SetBinaryPath sets a custom path to the czkawka_cli binary.
func (e *Executor) SetBinaryPath(path string) {
	if path != "" {
		e.binaryPath = path
	}
}

// CheckInstalled verifies that czkawka_cli is installed and accessible,
// returning the resolved path.
func (e *Executor) CheckInstalled() (string, error) {
	path, err := exec.LookPath(e.binaryPath)
	if err != nil {
		return "", &InvocationError{
			Command:  []string{e.binaryPath},
			ExitCode: -1,
			Err:      fmt.Errorf("czkawka_cli is not installed or not available in PATH: %w", err),
		}
	}
	return path, nil
}

// BuildCommand constructs the full argv for one media scan. Option order is
// fixed so the command shown to the user is reproducible between runs.
// czkawka writes its pretty JSON report to reportPath via -p.
func (e *Executor) BuildCommand(media Media, opts ScanOptions, targetDir, reportPath string, dryRun bool) []string {
	var command []string
	if media == MediaImages {
		command = []string{
			e.binaryPath, "image",
			"-d", targetDir,
			"-s", opts.ImageSimilarity,
			"-c", strconv.Itoa(opts.HashSize),
			"-g", opts.HashAlg,
			"-z", opts.ImageFilter,
			"-D", "AEB",
			"-p", reportPath,
			"-W",
		}
	} else {
		command = []string{
			e.binaryPath, "video",
			"-d", targetDir,
			"-t", strconv.Itoa(opts.VideoTolerance),
			"-D", "AEB",
			"-p", reportPath,
			"-W",
		}
	}
	if dryRun {
		command = append(command, "--dry-run")
	}
	return command
}

// Run executes a previously built command. The context cancels the child
// process, so an interrupt to the wrapper also stops czkawka mid-run instead
// of leaving an orphaned deletion pass behind.
func (e *Executor) Run(ctx context.Context, command []string) (*Result, error) {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result := &Result{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, &InvocationError{
				Command:  command,
				ExitCode: -1,
				Stdout:   result.Stdout,
				Stderr:   result.Stderr,
				Err:      fmt.Errorf("failed to start czkawka: %w", runErr),
			}
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if err := ctx.Err(); err != nil {
		return nil, &InvocationError{
			Command:  command,
			ExitCode: result.ExitCode,
			Err:      err,
		}
	}

	if !successCodes[result.ExitCode] {
		return nil, &InvocationError{
			Command:  command,
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}
	return result, nil
}

// FormatCommand renders argv as a single shell-safe line.
func FormatCommand(command []string) string {
	quoted := make([]string, len(command))
	for i, token := range command {
		quoted[i] = shellQuote(token)
	}
	return strings.Join(quoted, " ")
}

// RedactCommand renders argv for on-screen display: the binary collapses to
// its basename, options are split one per line with backslash continuations,
// and the scan target and report paths are replaced by placeholders. Full
// paths belong in artifacts, not terminal captures.
func RedactCommand(command []string, targetDir, reportPath string) string {
	if len(command) == 0 {
		return ""
	}

	display := func(token string) string {
		switch token {
		case targetDir:
			return "<target-folder>"
		case reportPath:
			return "<report-json>"
		}
		return token
	}

	base := command[0]
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}

	var lines []string
	current := base
	for _, token := range command[1:] {
		if strings.HasPrefix(token, "-") {
			lines = append(lines, current)
			current = "  " + token
		} else {
			current += " " + display(token)
		}
	}
	lines = append(lines, current)
	return strings.Join(lines, " \\\n")
}

func shellQuote(token string) string {
	if token == "" {
		return "''"
	}
	if !strings.ContainsAny(token, " \t\n\"'\\$&|;<>()*?[]#~") {
		return token
	}
	return "'" + strings.ReplaceAll(token, "'", `'"'"'`) + "'"
}
