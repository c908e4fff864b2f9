package render

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/czk-tool/czk/internal/report"
)

// Per-class column caps for the preview table. Previews show filenames only;
// full paths live in the CSV/JSON artifacts.
const (
	previewNameCap  = 60
	previewIndexCap = 6
)

// PreviewTable renders the duplicate preview for the detected width class.
// One formatting entry point parameterized by the class, instead of layout
// branching scattered across call sites.
func (r *Renderer) PreviewTable(rows []report.PreviewRow, shown, total int) {
	r.printf("  %s\n", r.label.Sprintf("Duplicate Preview (showing %d of %d)", shown, total))
	if len(rows) == 0 {
		r.printf("    (no duplicate rows)\n")
		return
	}

	switch r.class {
	case WidthWide:
		r.previewColumns(rows, true)
	case WidthMedium:
		r.previewColumns(rows, false)
	default:
		r.previewBlocks(rows)
	}
}

func (r *Renderer) previewColumns(rows []report.PreviewRow, withFirstRemove bool) {
	headers := []string{"index", "file_to_keep", "remove_count"}
	if withFirstRemove {
		headers = append(headers, "first_remove")
	}

	// The index is an identifier shared with the CSV/JSON artifacts, so it
	// renders verbatim; only the counts get thousands separators.
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Index),
			clip(filepath.Base(row.FileToKeep), previewNameCap),
			formatCount(row.RemoveCount),
		}
		if withFirstRemove {
			record = append(record, clip(baseOrDash(row.FirstRemove), previewNameCap))
		}
		records = append(records, record)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, record := range records {
		for i, cell := range record {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	r.printRow(headers, widths)
	separators := make([]string, len(headers))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	r.printRow(separators, widths)
	for _, record := range records {
		r.printRow(record, widths)
	}
}

func (r *Renderer) printRow(cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = pad(cell, widths[i])
	}
	r.printf("    %s\n", strings.Join(parts, "  "))
}

// previewBlocks renders one bordered block per group for narrow terminals.
func (r *Renderer) previewBlocks(rows []report.PreviewRow) {
	for _, row := range rows {
		r.printf("    +------------------------------\n")
		r.printf("    | %s %d\n", r.label.Sprint("Group"), row.Index)
		r.printf("    | Keep:   %s\n", clip(filepath.Base(row.FileToKeep), previewNameCap))
		r.printf("    | Remove: %d (first: %s)\n", row.RemoveCount, clip(baseOrDash(row.FirstRemove), previewNameCap))
		r.printf("    +------------------------------\n")
	}
}

func baseOrDash(path string) string {
	if path == "" || path == "-" {
		return "-"
	}
	return filepath.Base(path)
}

func clip(value string, width int) string {
	if len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

func pad(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return value + strings.Repeat(" ", width-len(value))
}
