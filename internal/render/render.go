// Package render prints the colorized, width-adaptive run report.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/czk-tool/czk/internal/report"
)

// WidthClass buckets the terminal into the three preview layouts.
type WidthClass int

const (
	WidthNarrow WidthClass = iota
	WidthMedium
	WidthWide
)

// Width class boundaries: narrow < 80 <= medium < 120 <= wide. These are
// fixed values, not tunables.
const (
	mediumMinColumns = 80
	wideMinColumns   = 120
)

// ClassifyWidth maps a terminal column count onto a layout class.
func ClassifyWidth(columns int) WidthClass {
	switch {
	case columns >= wideMinColumns:
		return WidthWide
	case columns >= mediumMinColumns:
		return WidthMedium
	default:
		return WidthNarrow
	}
}

// Config captures per-run render settings, resolved once at startup.
type Config struct {
	NoColor bool
	IsTTY   bool
	Width   int
}

// DetectConfig inspects stdout once. Piped or redirected output gets the
// plain narrow layout with color off; on an interactive terminal whose size
// cannot be determined the wide layout is assumed.
func DetectConfig(noColor bool) Config {
	cfg := Config{NoColor: noColor}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return cfg
	}
	cfg.IsTTY = true
	cfg.Width = wideMinColumns
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		cfg.Width = w
	}
	return cfg
}

// Renderer is a stateless formatter over one output stream. All color is
// suppressed when the stream is not a TTY or --no-color is set, independent
// of the width class.
type Renderer struct {
	out   io.Writer
	class WidthClass

	label *color.Color
	warn  *color.Color
	ok    *color.Color
	bad   *color.Color
}

// New builds a renderer for the given settings.
func New(cfg Config, out io.Writer) *Renderer {
	r := &Renderer{
		out:   out,
		class: ClassifyWidth(cfg.Width),
		label: color.New(color.FgCyan, color.Bold),
		warn:  color.New(color.FgYellow),
		ok:    color.New(color.FgGreen),
		bad:   color.New(color.FgRed, color.Bold),
	}
	if cfg.NoColor || !cfg.IsTTY {
		for _, c := range []*color.Color{r.label, r.warn, r.ok, r.bad} {
			c.DisableColor()
		}
	}
	return r
}

// Class exposes the selected width class.
func (r *Renderer) Class() WidthClass { return r.class }

func formatCount(v int) string {
	return humanize.Comma(int64(v))
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Renderer) title(text string) {
	r.printf("\n%s\n", r.label.Sprintf("== %s ==", text))
}

func (r *Renderer) kv(rows [][2]string) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		r.printf("  %s  %s\n", r.label.Sprintf("%-*s", width, row[0]), row[1])
	}
}

// RunHeader prints the run-level overview panel.
func (r *Renderer) RunHeader(modeLabel, targetDir, outDir, timestamp string, media []string) {
	r.title("Run Overview")
	r.kv([][2]string{
		{"Run Mode", modeLabel},
		{"Target Folder", targetDir},
		{"Reports Folder", outDir},
		{"Run Timestamp", timestamp},
		{"Media Types", strings.Join(media, ", ")},
	})
}

// MediaHeader starts one media kind's section. commandDisplay is the redacted
// multi-line command, already safe to show.
func (r *Renderer) MediaHeader(media, modeLabel, commandDisplay string) {
	r.title(fmt.Sprintf("%s - %s", strings.ToUpper(media), modeLabel))
	r.printf("  %s\n", r.label.Sprint("Command"))
	for _, line := range strings.Split(commandDisplay, "\n") {
		r.printf("    %s\n", line)
	}
}

// ExitCode prints the scanner's exit status; non-zero codes from a dry run
// are informational, so they are warned about rather than flagged as errors.
func (r *Renderer) ExitCode(code int) {
	value := fmt.Sprintf("%d", code)
	if code == 0 {
		value = r.ok.Sprint(value)
	} else {
		value = r.warn.Sprint(value)
	}
	r.printf("  %s  %s\n", r.label.Sprint("Scanner Exit Code"), value)
}

// Summary prints one media kind's metrics. Files marked for removal render in
// the warning color and the remaining estimate in the success color.
func (r *Renderer) Summary(s report.Summary) {
	r.printf("  %s\n", r.label.Sprint("Summary"))
	r.metricRows(s)
}

func (r *Renderer) metricRows(s report.Summary) {
	rows := []struct {
		label string
		value string
	}{
		{"Total Files Scanned", formatCount(s.TotalFound)},
		{"Duplicate Groups Found", formatCount(s.DuplicateGroups)},
		{"Files Marked for Removal", r.warn.Sprint(formatCount(s.DuplicatesToRemove))},
		{"Estimated Files Remaining", r.ok.Sprint(formatCount(s.AfterRemoveEstimate))},
	}
	width := 0
	for _, row := range rows {
		if len(row.label) > width {
			width = len(row.label)
		}
	}
	for _, row := range rows {
		r.printf("    %-*s  %s\n", width, row.label, row.value)
	}
}

// Artifacts prints where the run's files went. These are the only places full
// paths are allowed on screen, since the user needs them to open the reports.
func (r *Renderer) Artifacts(jsonPath, csvPath string) {
	r.printf("  %s\n", r.label.Sprint("Artifacts"))
	r.kv([][2]string{
		{"  JSON Report", jsonPath},
		{"  CSV Report", csvPath},
	})
}

// VizArtifact prints the HTML report location for viz runs.
func (r *Renderer) VizArtifact(htmlPath string) {
	r.printf("\n  %s  %s\n", r.label.Sprint("HTML Report"), htmlPath)
}

// CombinedSummary prints the cross-media totals.
func (r *Renderer) CombinedSummary(s report.Summary) {
	r.title("Combined Summary")
	r.metricRows(s)
}

// AnalyzeIntro lists exactly the tables loaded for this run's media
// selection, so the analyst never sees a table name that was not created.
func (r *Renderer) AnalyzeIntro(media []string) {
	r.title("Analytical Session")
	r.printf("  In-memory SQLite database, discarded on exit. Tables:\n")
	r.printf("    %s\n", "media_inventory")
	for _, m := range media {
		r.printf("    duplicates_%s\n", m)
		r.printf("    duplicates_%s_json\n", m)
		r.printf("    duplicates_%s_expanded\n", m)
	}
	r.printf("  End statements with ';'. Type .help for commands, .quit to exit.\n")
}

// Error prints a human-readable failure for one media kind or the whole run.
// Raw stack detail never goes through here.
func (r *Renderer) Error(message, details string) {
	r.printf("\n%s %s\n", r.bad.Sprint("Error:"), message)
	if details != "" {
		for _, line := range strings.Split(strings.TrimRight(details, "\n"), "\n") {
			r.printf("  %s\n", line)
		}
	}
}
