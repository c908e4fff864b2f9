// Package app wires the scanner, normalizer, renderer and output stages into
// one run. Each mode (test, execute, analyze, viz) shares the same scan
// pipeline and differs only in what happens after normalization.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/czk-tool/czk/internal/analyze"
	"github.com/czk-tool/czk/internal/config"
	"github.com/czk-tool/czk/internal/czkawka"
	"github.com/czk-tool/czk/internal/inventory"
	"github.com/czk-tool/czk/internal/render"
	"github.com/czk-tool/czk/internal/report"
	"github.com/czk-tool/czk/internal/viz"
)

// App holds one run's components. Build it with New after the options have
// been finalized.
type App struct {
	Options  *config.Options
	Executor *czkawka.Executor
	Renderer *render.Renderer
	Display  render.Config

	// Stdin and Stdout feed the analyze shell; tests swap them out.
	Stdin  io.Reader
	Stdout io.Writer
}

// New builds an App writing to stdout, with colors and layout detected from
// the terminal.
func New(opts *config.Options) *App {
	display := render.DetectConfig(opts.NoColor)
	executor := czkawka.NewExecutor()
	executor.SetBinaryPath(opts.Binary)
	return &App{
		Options:  opts,
		Executor: executor,
		Renderer: render.New(display, os.Stdout),
		Display:  display,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
	}
}

// mediaResult carries one media kind's scan output through the post-scan
// stages.
type mediaResult struct {
	media    string
	command  []string
	redacted string
	exitCode int
	summary  report.Summary
	rows     []report.Row
	items    []report.ItemRow
	jsonPath string
	csvPath  string
}

// Run executes the configured mode and returns the process exit code. A
// failed media scan is reported and the remaining media still run; any
// failure makes the final exit code non-zero.
func (a *App) Run(ctx context.Context) int {
	opts := a.Options
	r := a.Renderer

	if _, err := a.Executor.CheckInstalled(); err != nil {
		r.Error("czkawka_cli is not installed or not on PATH", err.Error())
		return 1
	}

	media := czkawka.MediaTargets(opts.Media)
	mediaNames := make([]string, len(media))
	for i, m := range media {
		mediaNames[i] = string(m)
	}

	r.RunHeader(opts.ModeLabel(), opts.TargetDir, opts.OutDir, opts.Timestamp, mediaNames)

	var results []mediaResult
	failed := false
	for _, m := range media {
		res, err := a.runMedia(ctx, m)
		if err != nil {
			if ctx.Err() != nil {
				r.Error("run interrupted", err.Error())
				return 130
			}
			r.Error(fmt.Sprintf("%s scan failed", m), err.Error())
			// Nothing has been produced yet, so the whole run aborts.
			// Once one media kind has completed, later failures only
			// skip their own media kind.
			if len(results) == 0 {
				return 1
			}
			failed = true
			continue
		}
		results = append(results, res)
	}
	if len(results) > 1 {
		combined := report.Summary{}
		for _, res := range results {
			combined.TotalFound += res.summary.TotalFound
			combined.DuplicateGroups += res.summary.DuplicateGroups
			combined.DuplicatesToRemove += res.summary.DuplicatesToRemove
			combined.AfterRemoveEstimate += res.summary.AfterRemoveEstimate
		}
		r.CombinedSummary(combined)
	}

	switch opts.Mode {
	case "analyze":
		if err := a.runAnalyze(results); err != nil {
			r.Error("analyze session failed", err.Error())
			return 1
		}
	case "viz":
		if err := a.runViz(results); err != nil {
			r.Error("could not write viz report", err.Error())
			return 1
		}
	}

	if failed {
		return 1
	}
	return 0
}

// runMedia scans one media kind end to end: count candidates, invoke the
// scanner, normalize its report and persist the JSON and CSV artifacts.
func (a *App) runMedia(ctx context.Context, media czkawka.Media) (mediaResult, error) {
	opts := a.Options
	r := a.Renderer

	totalFound, err := inventory.Count(opts.TargetDir, string(media))
	if err != nil {
		return mediaResult{}, fmt.Errorf("counting %s files: %w", media, err)
	}

	rawFile, err := os.CreateTemp("", fmt.Sprintf("czk-raw-%s-*.json", media))
	if err != nil {
		return mediaResult{}, fmt.Errorf("creating scanner report file: %w", err)
	}
	rawPath := rawFile.Name()
	rawFile.Close()
	defer os.Remove(rawPath)

	scanOpts := czkawka.ScanOptions{
		HashSize:        opts.HashSize,
		ImageSimilarity: opts.ImageSimilarity,
		HashAlg:         config.ImageHashAlg,
		ImageFilter:     config.ImageFilter,
		VideoTolerance:  opts.VideoTolerance,
	}
	command := a.Executor.BuildCommand(media, scanOpts, opts.TargetDir, rawPath, opts.DryRun())
	redacted := czkawka.RedactCommand(command, opts.TargetDir, rawPath)

	r.MediaHeader(string(media), opts.ModeLabel(), redacted)

	result, err := a.Executor.Run(ctx, command)
	if err != nil {
		return mediaResult{}, err
	}
	r.ExitCode(result.ExitCode)

	// An absent or empty report file means czkawka found nothing.
	var groups []report.Group
	data, readErr := os.ReadFile(rawPath)
	if readErr == nil && len(data) > 0 {
		groups, _, err = report.ParseGroups(data, string(media))
		if err != nil {
			return mediaResult{}, err
		}
	}

	var rows []report.Row
	if opts.Mode == "execute" {
		rows = report.ReconcileExecuted(groups)
	} else {
		rows = report.BuildRows(groups)
	}

	summary, err := report.BuildSummary(totalFound, len(rows), rows)
	if err != nil {
		return mediaResult{}, err
	}

	jsonPath, csvPath := report.ArtifactPaths(opts.OutDir, opts.BaseName, string(media), opts.Timestamp)
	items := report.BuildItemRows(groups, filepath.Base(jsonPath))
	artifact := report.Artifact{
		Media:   string(media),
		Summary: summary,
		Groups:  rows,
		Items:   items,
	}
	if err := report.WriteArtifacts(opts.OutDir, artifact, jsonPath, csvPath); err != nil {
		return mediaResult{}, err
	}

	r.Summary(summary)
	r.Artifacts(jsonPath, csvPath)

	preview, shown, total := report.PreviewRows(rows, a.previewTop())
	r.PreviewTable(preview, shown, total)

	return mediaResult{
		media:    string(media),
		command:  command,
		redacted: redacted,
		exitCode: result.ExitCode,
		summary:  summary,
		rows:     rows,
		items:    items,
		jsonPath: jsonPath,
		csvPath:  csvPath,
	}, nil
}

// previewTop is the preview row limit; 0 means unlimited.
func (a *App) previewTop() int {
	if a.Options.All {
		return 0
	}
	return a.Options.Top
}

// runAnalyze loads the full file inventory and every scanned media kind's
// duplicate tables into an in-memory database, then hands the terminal to an
// interactive SQL shell.
func (a *App) runAnalyze(results []mediaResult) error {
	entries, err := a.collectInventory()
	if err != nil {
		return fmt.Errorf("building file inventory: %w", err)
	}

	session, err := analyze.Open()
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.LoadInventory(entries); err != nil {
		return err
	}
	mediaNames := make([]string, 0, len(results))
	for _, res := range results {
		expanded := report.ExpandRows(res.rows)
		if err := session.LoadDuplicates(res.media, res.rows, res.items, expanded); err != nil {
			return err
		}
		mediaNames = append(mediaNames, res.media)
	}

	a.Renderer.AnalyzeIntro(mediaNames)
	return session.Shell(a.Stdin, a.Stdout)
}

// collectInventory walks the target folder, with a spinner on interactive
// terminals since large trees take a while.
func (a *App) collectInventory() ([]inventory.Entry, error) {
	var onFile func()
	if a.Display.IsTTY {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Indexing files"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		onFile = func() { bar.Add(1) }
	}
	return inventory.Collect(a.Options.TargetDir, onFile)
}

// runViz renders every scanned media kind into one self-contained HTML
// report next to the other artifacts.
func (a *App) runViz(results []mediaResult) error {
	opts := a.Options

	sections := make([]viz.MediaSection, 0, len(results))
	for _, res := range results {
		shownRows := res.rows
		if top := a.previewTop(); top > 0 && len(shownRows) > top {
			shownRows = shownRows[:top]
		}

		var paths []string
		for _, row := range shownRows {
			paths = append(paths, row.FileToKeep)
			paths = append(paths, row.FilesToRemove...)
		}

		sections = append(sections, viz.MediaSection{
			Media:          res.media,
			CommandPreview: res.redacted,
			ExitCode:       res.exitCode,
			Summary:        res.summary,
			JSONPath:       res.jsonPath,
			CSVPath:        res.csvPath,
			Rows:           shownRows,
			ShownRows:      len(shownRows),
			TotalRows:      len(res.rows),
			Metadata:       viz.ProbeMetadata(paths, res.media),
		})
	}

	mediaNames := make([]string, len(sections))
	for i, section := range sections {
		mediaNames[i] = section.Media
	}
	page := viz.BuildHTMLReport(viz.RunContext{
		RunMode:    opts.ModeLabel(),
		TargetDir:  opts.TargetDir,
		OutDir:     opts.OutDir,
		Timestamp:  opts.Timestamp,
		MediaKinds: mediaNames,
	}, sections)

	htmlPath := vizPath(opts.OutDir, opts.BaseName, opts.Timestamp)
	err := report.WriteFileAtomic(htmlPath, func(w io.Writer) error {
		_, werr := io.WriteString(w, page)
		return werr
	})
	if err != nil {
		return err
	}

	a.Renderer.VizArtifact(htmlPath)
	return nil
}

// vizPath picks a non-clobbering path for the HTML report, mirroring the
// artifact naming scheme.
func vizPath(outDir, base, timestamp string) string {
	stem := fmt.Sprintf("%s-viz-%s", base, timestamp)
	path := filepath.Join(outDir, stem+".html")
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(outDir, fmt.Sprintf("%s-%d.html", stem, n))
	}
}
