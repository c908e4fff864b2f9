// Package viz builds the self-contained HTML duplicate report with inline
// media previews.
package viz

import (
	"fmt"
	"html"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/czk-tool/czk/internal/report"
)

// Cards beyond this many start hidden; the in-page pagination reveals them.
const defaultPageSize = 25

// RunContext is the run-level metadata shown in the report overview.
type RunContext struct {
	RunMode    string
	TargetDir  string
	OutDir     string
	Timestamp  string
	MediaKinds []string
}

// MediaSection is one media kind's content in the report.
type MediaSection struct {
	Media          string
	CommandPreview string
	ExitCode       int
	Summary        report.Summary
	JSONPath       string
	CSVPath        string
	Rows           []report.Row
	ShownRows      int
	TotalRows      int
	Metadata       map[string]ItemMetadata
}

func escape(s string) string { return html.EscapeString(s) }

func formatNumber(v int) string { return humanize.Comma(int64(v)) }

func formatSize(meta *ItemMetadata) string {
	if meta == nil || !meta.Exists || meta.SizeBytes < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(meta.SizeBytes))
}

func formatModified(meta *ItemMetadata) string {
	if meta == nil || meta.ModifiedEpoch <= 0 {
		return "-"
	}
	return time.Unix(meta.ModifiedEpoch, 0).Format("2006-01-02 15:04:05")
}

func formatResolution(media string, meta *ItemMetadata) string {
	if media != "images" || meta == nil || meta.Width <= 0 || meta.Height <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", meta.Width, meta.Height)
}

func fileURI(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	u := url.URL{Scheme: "file", Path: abs}
	return u.String()
}

func renderArtifactLink(path, label string) string {
	text := escape(path)
	uri := fileURI(path)
	if uri == "" {
		return fmt.Sprintf("<div><strong>%s:</strong> <code>%s</code></div>", escape(label), text)
	}
	return fmt.Sprintf(
		`<div><strong>%s:</strong> <a href="%s" target="_blank" rel="noreferrer"><code>%s</code></a></div>`,
		escape(label), escape(uri), text)
}

func renderMediaItem(b *strings.Builder, path, media string, metadata map[string]ItemMetadata) {
	var meta *ItemMetadata
	if m, ok := metadata[path]; ok {
		meta = &m
	}
	fileName := filepath.Base(path)
	if path == "" {
		fileName = "(missing file name)"
	}
	nameText := escape(fileName)
	uri := fileURI(path)

	preview := `<div class="preview-unavailable">Preview unavailable</div>`
	if uri != "" && meta != nil && meta.Exists {
		if media == "images" {
			preview = fmt.Sprintf(`<img src="%s" alt="%s" loading="lazy">`, escape(uri), nameText)
		} else {
			preview = fmt.Sprintf(`<video controls preload="metadata" muted><source src="%s"></video>`, escape(uri))
		}
	}

	actions := ""
	if path != "" && uri != "" {
		actions = fmt.Sprintf(
			`<div class="media-actions"><a class="media-link" href="%s" target="_blank" rel="noopener noreferrer">Open</a></div>`,
			escape(uri))
	}

	b.WriteString(`<div class="media-item">`)
	fmt.Fprintf(b, `<div class="media-preview">%s</div>`, preview)
	b.WriteString(`<div class="media-meta">`)
	fmt.Fprintf(b, `<div class="media-name">%s</div>`, nameText)
	b.WriteString(actions)
	b.WriteString(`<div class="media-details">`)
	fmt.Fprintf(b, `<span><strong>Size:</strong> %s</span>`, escape(formatSize(meta)))
	fmt.Fprintf(b, `<span><strong>Modified:</strong> %s</span>`, escape(formatModified(meta)))
	fmt.Fprintf(b, `<span><strong>Resolution:</strong> %s</span>`, escape(formatResolution(media, meta)))
	b.WriteString(`</div></div></div>`)
}

func searchIndex(row report.Row) string {
	var names []string
	if name := strings.ToLower(filepath.Base(row.FileToKeep)); row.FileToKeep != "" && name != "" {
		names = append(names, name)
	}
	for _, remove := range row.FilesToRemove {
		if name := strings.ToLower(filepath.Base(remove)); remove != "" && name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " ")
}

func renderSummaryBlock(b *strings.Builder, s report.Summary) {
	rows := []struct{ label, value string }{
		{"Total Files Scanned", formatNumber(s.TotalFound)},
		{"Duplicate Groups Found", formatNumber(s.DuplicateGroups)},
		{"Files Marked for Removal", formatNumber(s.DuplicatesToRemove)},
		{"Estimated Files Remaining", formatNumber(s.AfterRemoveEstimate)},
	}
	b.WriteString(`<div class="summary-block">`)
	for _, row := range rows {
		fmt.Fprintf(b,
			`<div class="summary-row"><span class="summary-label">%s</span><span class="summary-value">%s</span></div>`,
			escape(row.label), escape(row.value))
	}
	b.WriteString(`</div>`)
}

func renderCards(b *strings.Builder, sectionID string, section MediaSection) {
	fmt.Fprintf(b, `<div id="%s" class="dup-cards" data-page="1">`, escape(sectionID))
	for position, row := range section.Rows {
		keepName := filepath.Base(row.FileToKeep)
		if row.FileToKeep == "" {
			keepName = "-"
		}
		hidden := ""
		if position >= defaultPageSize {
			hidden = " hidden"
		}
		fmt.Fprintf(b, `<details class="dup-card" data-group-index="%d" data-search="%s"%s>`,
			row.Index, escape(searchIndex(row)), hidden)
		b.WriteString(`<summary class="dup-card-summary">`)
		fmt.Fprintf(b, `<span class="summary-chip"><strong>Group:</strong> %d</span>`, row.Index)
		fmt.Fprintf(b, `<span class="summary-chip"><strong>File to Keep:</strong> %s</span>`, escape(keepName))
		fmt.Fprintf(b, `<span class="summary-chip"><strong>Marked for Removal:</strong> %d</span>`, row.Count)
		b.WriteString(`</summary><div class="dup-card-body">`)

		b.WriteString(`<div class="dup-card-section"><h4>File to Keep</h4>`)
		renderMediaItem(b, row.FileToKeep, section.Media, section.Metadata)
		b.WriteString(`</div>`)

		b.WriteString(`<div class="dup-card-section"><h4>Files to Remove</h4>`)
		if len(row.FilesToRemove) == 0 {
			b.WriteString(`<p class="empty-inline">No files marked for removal.</p>`)
		} else {
			b.WriteString(`<div class="remove-items">`)
			for _, remove := range row.FilesToRemove {
				renderMediaItem(b, remove, section.Media, section.Metadata)
			}
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div></div></details>`)
	}
	b.WriteString(`<p class="search-empty" hidden>No duplicate groups match this search.</p></div>`)
}

func renderControls(b *strings.Builder, sectionID string, totalCards int) {
	searchID := sectionID + "-search"
	totalPages := (totalCards + defaultPageSize - 1) / defaultPageSize
	if totalPages < 1 {
		totalPages = 1
	}
	nextDisabled := ""
	if totalPages <= 1 {
		nextDisabled = " disabled"
	}

	fmt.Fprintf(b, `<div class="search-controls">`+
		`<label class="search-label" for="%[1]s">Search filenames</label>`+
		`<input id="%[1]s" class="search-input" type="search" placeholder="Partial match across keep and remove files" oninput="czkFilterCards('%[2]s')">`+
		`<button type="button" class="control-btn" onclick="czkClearSearch('%[2]s')">Clear</button>`+
		`</div>`, escape(searchID), escape(sectionID))

	fmt.Fprintf(b, `<div class="pagination-controls">`+
		`<label class="search-label" for="%[1]s-page-size">Items per page</label>`+
		`<select id="%[1]s-page-size" class="page-size-select" onchange="czkFilterCards('%[1]s')">`+
		`<option value="25" selected>25</option><option value="50">50</option><option value="100">100</option></select>`+
		`<button type="button" id="%[1]s-page-first" class="control-btn" onclick="czkJumpPage('%[1]s', 'first')" disabled>First</button>`+
		`<button type="button" id="%[1]s-page-prev" class="control-btn" onclick="czkChangePage('%[1]s', -1)" disabled>Previous</button>`+
		`<button type="button" id="%[1]s-page-next" class="control-btn" onclick="czkChangePage('%[1]s', 1)"%[2]s>Next</button>`+
		`<button type="button" id="%[1]s-page-last" class="control-btn" onclick="czkJumpPage('%[1]s', 'last')"%[2]s>Last</button>`+
		`<span id="%[1]s-page-status" class="page-status">Page 1 of %[3]d</span>`+
		`</div>`, escape(sectionID), nextDisabled, totalPages)

	fmt.Fprintf(b, `<div class="card-controls">`+
		`<button type="button" class="control-btn" onclick="czkToggleCards('%[1]s', true)">Show all</button>`+
		`<button type="button" class="control-btn" onclick="czkToggleCards('%[1]s', false)">Collapse all</button>`+
		`</div>`, escape(sectionID))
}

func renderMediaSection(b *strings.Builder, section MediaSection, sectionIndex int) {
	sectionID := fmt.Sprintf("dup-cards-%s-%d", section.Media, sectionIndex)

	b.WriteString(`<section class="media-section"><h2>Overview</h2>`)
	fmt.Fprintf(b, `<div class="command-block"><h3>Command</h3><pre>%s</pre></div>`, escape(section.CommandPreview))
	fmt.Fprintf(b, `<p class="exit-code">Scanner Exit Code: %d</p>`, section.ExitCode)
	renderSummaryBlock(b, section.Summary)
	b.WriteString(`<div class="artifact-block">`)
	b.WriteString(renderArtifactLink(section.JSONPath, "JSON Report"))
	b.WriteString(renderArtifactLink(section.CSVPath, "CSV Report"))
	b.WriteString(`</div></section>`)

	b.WriteString(`<section class="results-section"><h2>Results</h2>`)
	fmt.Fprintf(b, `<p class="preview-count">%s</p>`,
		escape(fmt.Sprintf("Showing %d of %d duplicate groups", section.ShownRows, section.TotalRows)))
	if len(section.Rows) == 0 {
		b.WriteString(`<p class="empty">(no duplicate rows)</p>`)
	} else {
		renderControls(b, sectionID, len(section.Rows))
		renderCards(b, sectionID, section)
	}
	b.WriteString(`</section>`)
}

// BuildHTMLReport renders the complete self-contained document.
func BuildHTMLReport(runCtx RunContext, sections []MediaSection) string {
	var b strings.Builder

	b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString(`<title>czk viz report</title><style>`)
	b.WriteString(reportCSS)
	b.WriteString(`</style></head><body data-theme="dark"><main>`)

	b.WriteString(`<section class="overview"><div class="overview-header"><h1>czk viz report</h1>`)
	b.WriteString(`<button id="theme-toggle" type="button" class="theme-toggle" onclick="czkToggleTheme()">Light mode</button></div>`)
	b.WriteString(`<div class="overview-grid">`)
	fmt.Fprintf(&b, `<div class="label">Run Mode</div><div class="value">%s</div>`, escape(runCtx.RunMode))
	fmt.Fprintf(&b, `<div class="label">Target Folder</div><div class="value">%s</div>`, escape(runCtx.TargetDir))
	fmt.Fprintf(&b, `<div class="label">Reports Folder</div><div class="value">%s</div>`, escape(runCtx.OutDir))
	fmt.Fprintf(&b, `<div class="label">Run Timestamp</div><div class="value">%s</div>`, escape(runCtx.Timestamp))
	fmt.Fprintf(&b, `<div class="label">Media Types</div><div class="value">%s</div>`, escape(strings.Join(runCtx.MediaKinds, ", ")))
	b.WriteString(`</div></section>`)

	for i, section := range sections {
		renderMediaSection(&b, section, i+1)
	}

	b.WriteString(`</main><script>`)
	b.WriteString(reportJS)
	b.WriteString(`</script></body></html>`)
	return b.String()
}
