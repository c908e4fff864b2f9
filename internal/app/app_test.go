package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/czk-tool/czk/internal/config"
	"github.com/czk-tool/czk/internal/czkawka"
	"github.com/czk-tool/czk/internal/render"
)

// writeStubScanner writes a shell script that stands in for czkawka_cli: it
// locates the -p report path in its arguments, writes the given JSON there
// and exits with the given code.
func writeStubScanner(t *testing.T, dir, reportJSON string, exitCode int, extra string) string {
	t.Helper()
	script := fmt.Sprintf(`#!/bin/sh
report=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-p" ]; then report="$arg"; fi
  prev="$arg"
done
%s
cat > "$report" <<'CZKEOF'
%s
CZKEOF
exit %d
`, extra, reportJSON, exitCode)

	path := filepath.Join(dir, "czkawka_cli")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFiles(t *testing.T, dir string, sizes map[string]int) {
	t.Helper()
	for name, size := range sizes {
		if err := os.WriteFile(filepath.Join(dir, name), bytes.Repeat([]byte("x"), size), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestApp(t *testing.T, opts *config.Options) (*App, *bytes.Buffer) {
	t.Helper()
	if err := opts.Finalize(time.Now()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var out bytes.Buffer
	display := render.Config{NoColor: true, IsTTY: false, Width: 150}
	executor := czkawka.NewExecutor()
	executor.SetBinaryPath(opts.Binary)
	return &App{
		Options:  opts,
		Executor: executor,
		Renderer: render.New(display, &out),
		Display:  display,
		Stdin:    strings.NewReader(""),
		Stdout:   &out,
	}, &out
}

func baseOptions(mode, target, outDir, binary string) *config.Options {
	return &config.Options{
		Mode:            mode,
		TargetDir:       target,
		OutDir:          outDir,
		Media:           "images",
		HashSize:        config.DefaultHashSize,
		ImageSimilarity: config.DefaultImageSimilarity,
		VideoTolerance:  config.DefaultVideoTolerance,
		Top:             config.DefaultTop,
		NoColor:         true,
		Binary:          binary,
	}
}

func TestRunDryRun(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"keep.jpg": 300, "dup1.jpg": 100, "dup2.jpg": 100})

	reportJSON := fmt.Sprintf(`[
		[
			{"path": %q, "size": 300, "modified_date": 100},
			{"path": %q, "size": 100, "modified_date": 200},
			{"path": %q, "size": 100, "modified_date": 300}
		]
	]`,
		filepath.Join(target, "keep.jpg"),
		filepath.Join(target, "dup1.jpg"),
		filepath.Join(target, "dup2.jpg"))

	binary := writeStubScanner(t, t.TempDir(), reportJSON, 11, "")
	outDir := filepath.Join(t.TempDir(), "reports")
	app, out := newTestApp(t, baseOptions("test", target, outDir, binary))

	if code := app.Run(context.Background()); code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}

	got := out.String()
	for _, want := range []string{
		"Run Overview", "DRY RUN",
		"IMAGES - DRY RUN",
		"<target-folder>", "<report-json>",
		"Scanner Exit Code", "11",
		"Total Files Scanned", "3",
		"Duplicate Groups Found", "1",
		"Files Marked for Removal", "2",
		"Estimated Files Remaining", "1",
		"Duplicate Preview (showing 1 of 1)",
		"keep.jpg",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	// Artifacts land in the reports folder under the frozen naming scheme.
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	var jsonSeen, csvSeen bool
	prefix := app.Options.BaseName + "-images-" + app.Options.Timestamp
	for _, entry := range entries {
		switch entry.Name() {
		case prefix + ".json":
			jsonSeen = true
		case prefix + ".csv":
			csvSeen = true
		}
	}
	if !jsonSeen || !csvSeen {
		t.Errorf("artifacts missing, dir has %v", entries)
	}

	// Dry run must not touch the originals.
	for _, name := range []string{"keep.jpg", "dup1.jpg", "dup2.jpg"} {
		if _, err := os.Stat(filepath.Join(target, name)); err != nil {
			t.Errorf("dry run removed %s", name)
		}
	}
}

func TestRunExecuteReconciliation(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"survivor.jpg": 100, "victim.jpg": 300})
	victim := filepath.Join(target, "victim.jpg")
	survivor := filepath.Join(target, "survivor.jpg")

	// The stub deletes the projected keep itself, as czkawka occasionally
	// does; reconciliation must then report the survivor as the keep.
	reportJSON := fmt.Sprintf(`[
		[
			{"path": %q, "size": 300, "modified_date": 100},
			{"path": %q, "size": 100, "modified_date": 200}
		]
	]`, victim, survivor)
	binary := writeStubScanner(t, t.TempDir(), reportJSON, 11, fmt.Sprintf("rm -f %q", victim))

	outDir := filepath.Join(t.TempDir(), "reports")
	app, out := newTestApp(t, baseOptions("execute", target, outDir, binary))

	if code := app.Run(context.Background()); code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	got := out.String()
	if !strings.Contains(got, "EXECUTE") {
		t.Errorf("output missing mode label:\n%s", got)
	}
	if !strings.Contains(got, "survivor.jpg") {
		t.Errorf("reconciled keep not in preview:\n%s", got)
	}
	if strings.Contains(got, "--dry-run") {
		t.Errorf("execute mode passed --dry-run:\n%s", got)
	}
}

func TestRunScannerHardFailure(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"a.jpg": 10})

	binary := writeStubScanner(t, t.TempDir(), "[]", 1, "")
	outDir := filepath.Join(t.TempDir(), "reports")
	app, out := newTestApp(t, baseOptions("test", target, outDir, binary))

	if code := app.Run(context.Background()); code != 1 {
		t.Fatalf("exit code = %d, want 1; output:\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Errorf("failure not reported:\n%s", out.String())
	}
}

func TestRunMissingBinary(t *testing.T) {
	target := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "reports")
	app, out := newTestApp(t, baseOptions("test", target, outDir, filepath.Join(t.TempDir(), "nope")))

	if code := app.Run(context.Background()); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "not installed") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRunEmptyReport(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"a.jpg": 10, "b.jpg": 20})

	binary := writeStubScanner(t, t.TempDir(), "[]", 0, "")
	outDir := filepath.Join(t.TempDir(), "reports")
	app, out := newTestApp(t, baseOptions("test", target, outDir, binary))

	if code := app.Run(context.Background()); code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	got := out.String()
	for _, want := range []string{"Duplicate Groups Found", "(no duplicate rows)", "Estimated Files Remaining"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunAnalyzeMode(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"keep.jpg": 200, "dup.jpg": 100, "notes.txt": 5})

	reportJSON := fmt.Sprintf(`[
		[
			{"path": %q, "size": 200, "modified_date": 100},
			{"path": %q, "size": 100, "modified_date": 200}
		]
	]`, filepath.Join(target, "keep.jpg"), filepath.Join(target, "dup.jpg"))
	binary := writeStubScanner(t, t.TempDir(), reportJSON, 11, "")

	outDir := filepath.Join(t.TempDir(), "reports")
	app, out := newTestApp(t, baseOptions("analyze", target, outDir, binary))
	app.Stdin = strings.NewReader("SELECT COUNT(*) AS n FROM media_inventory;\n.quit\n")

	if code := app.Run(context.Background()); code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	got := out.String()
	for _, want := range []string{"Analytical Session", "duplicates_images", "czk> ", "(1 rows)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "duplicates_videos") {
		t.Errorf("images-only run lists video tables:\n%s", got)
	}
}

func TestRunVizMode(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"keep.jpg": 200, "dup.jpg": 100})

	reportJSON := fmt.Sprintf(`[
		[
			{"path": %q, "size": 200, "modified_date": 100},
			{"path": %q, "size": 100, "modified_date": 200}
		]
	]`, filepath.Join(target, "keep.jpg"), filepath.Join(target, "dup.jpg"))
	binary := writeStubScanner(t, t.TempDir(), reportJSON, 11, "")

	outDir := filepath.Join(t.TempDir(), "reports")
	app, out := newTestApp(t, baseOptions("viz", target, outDir, binary))

	if code := app.Run(context.Background()); code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}

	htmlName := app.Options.BaseName + "-viz-" + app.Options.Timestamp + ".html"
	htmlPath := filepath.Join(outDir, htmlName)
	if !strings.Contains(out.String(), "HTML Report") {
		t.Errorf("viz artifact not announced:\n%s", out.String())
	}

	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("html report not written: %v", err)
	}
	page := string(data)
	for _, want := range []string{"<!doctype html>", "czk viz report", "keep.jpg", "Showing 1 of 1 duplicate groups"} {
		if !strings.Contains(page, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

// writeFailingStub writes a stub scanner that fails for one subcommand and
// reports an empty run for the other.
func writeFailingStub(t *testing.T, dir, failSubcommand string) string {
	t.Helper()
	script := fmt.Sprintf(`#!/bin/sh
if [ "$1" = %q ]; then exit 1; fi
report=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-p" ]; then report="$arg"; fi
  prev="$arg"
done
echo '[]' > "$report"
exit 0
`, failSubcommand)

	path := filepath.Join(dir, "czkawka_cli")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunAbortsWhenFirstMediaFails(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"a.jpg": 10, "b.mp4": 20})

	binary := writeFailingStub(t, t.TempDir(), "image")
	outDir := filepath.Join(t.TempDir(), "reports")

	opts := baseOptions("test", target, outDir, binary)
	opts.Media = "both"
	app, out := newTestApp(t, opts)

	if code := app.Run(context.Background()); code != 1 {
		t.Fatalf("exit code = %d, want 1; output:\n%s", code, out.String())
	}
	got := out.String()
	if !strings.Contains(got, "images scan failed") {
		t.Errorf("failure not reported:\n%s", got)
	}
	// Nothing was produced before the failure, so the run stops there.
	if strings.Contains(got, "VIDEOS") {
		t.Errorf("run continued to the next media kind after an initial failure:\n%s", got)
	}
	if _, err := os.ReadDir(outDir); !os.IsNotExist(err) {
		t.Errorf("aborted run left artifacts behind")
	}
}

func TestRunContinuesAfterLaterMediaFailure(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"a.jpg": 10, "b.mp4": 20})

	binary := writeFailingStub(t, t.TempDir(), "video")
	outDir := filepath.Join(t.TempDir(), "reports")

	opts := baseOptions("test", target, outDir, binary)
	opts.Media = "both"
	app, out := newTestApp(t, opts)

	if code := app.Run(context.Background()); code != 1 {
		t.Fatalf("exit code = %d, want 1; output:\n%s", code, out.String())
	}
	got := out.String()
	if !strings.Contains(got, "IMAGES - DRY RUN") || !strings.Contains(got, "videos scan failed") {
		t.Errorf("images section or videos failure missing:\n%s", got)
	}

	// The completed media kind keeps its artifacts.
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("want the images JSON and CSV, got %v", entries)
	}
}

func TestRunBothMediaCombinedSummary(t *testing.T) {
	target := t.TempDir()
	writeFiles(t, target, map[string]int{"a.jpg": 10, "b.mp4": 20})

	binary := writeStubScanner(t, t.TempDir(), "[]", 0, "")
	outDir := filepath.Join(t.TempDir(), "reports")

	opts := baseOptions("test", target, outDir, binary)
	opts.Media = "both"
	app, out := newTestApp(t, opts)

	if code := app.Run(context.Background()); code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out.String())
	}
	got := out.String()
	for _, want := range []string{"IMAGES - DRY RUN", "VIDEOS - DRY RUN", "Combined Summary"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
