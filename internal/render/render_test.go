package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/czk-tool/czk/internal/report"
)

func TestClassifyWidth(t *testing.T) {
	tests := []struct {
		name    string
		columns int
		want    WidthClass
	}{
		{"very narrow", 40, WidthNarrow},
		{"just below medium", 79, WidthNarrow},
		{"medium lower bound", 80, WidthMedium},
		{"typical medium", 100, WidthMedium},
		{"just below wide", 119, WidthMedium},
		{"wide lower bound", 120, WidthWide},
		{"very wide", 200, WidthWide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyWidth(tt.columns); got != tt.want {
				t.Errorf("ClassifyWidth(%d) = %v, want %v", tt.columns, got, tt.want)
			}
		})
	}
}

func TestDetectConfigNonTTY(t *testing.T) {
	cfg := DetectConfig(false)
	if cfg.IsTTY {
		t.Skip("stdout is a terminal")
	}
	if got := ClassifyWidth(cfg.Width); got != WidthNarrow {
		t.Errorf("non-interactive output got width %d (class %v), want narrow", cfg.Width, got)
	}
}

func newTestRenderer(width int) (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := New(Config{NoColor: true, IsTTY: false, Width: width}, &buf)
	return r, &buf
}

func previewFixture() []report.PreviewRow {
	return []report.PreviewRow{
		{Index: 0, FileToKeep: "/photos/keep-me.jpg", RemoveCount: 2, FirstRemove: "/photos/dup-a.jpg"},
		{Index: 1, FileToKeep: "/videos/keep.mp4", RemoveCount: 1, FirstRemove: "/videos/dup.mp4"},
	}
}

func TestPreviewTableWide(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.PreviewTable(previewFixture(), 2, 2)
	out := buf.String()

	for _, want := range []string{"Duplicate Preview (showing 2 of 2)", "index", "file_to_keep", "remove_count", "first_remove", "keep-me.jpg", "dup-a.jpg"} {
		if !strings.Contains(out, want) {
			t.Errorf("wide output missing %q:\n%s", want, out)
		}
	}
	// Filenames only, never full paths.
	if strings.Contains(out, "/photos/") {
		t.Errorf("wide output leaks a directory:\n%s", out)
	}
}

func TestPreviewTableMedium(t *testing.T) {
	r, buf := newTestRenderer(100)
	r.PreviewTable(previewFixture(), 2, 2)
	out := buf.String()

	if !strings.Contains(out, "remove_count") {
		t.Errorf("medium output missing remove_count:\n%s", out)
	}
	if strings.Contains(out, "first_remove") {
		t.Errorf("medium output should drop the first_remove column:\n%s", out)
	}
}

func TestPreviewTableNarrow(t *testing.T) {
	r, buf := newTestRenderer(60)
	r.PreviewTable(previewFixture(), 2, 2)
	out := buf.String()

	for _, want := range []string{"Duplicate Preview", "Group 0", "Keep:", "keep-me.jpg", "Remove: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("narrow output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "index") {
		t.Errorf("narrow output should not be columnar:\n%s", out)
	}
}

func TestPreviewTableIndexIsVerbatim(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.PreviewTable([]report.PreviewRow{
		{Index: 1234, FileToKeep: "/p/keep.jpg", RemoveCount: 5678, FirstRemove: "/p/dup.jpg"},
	}, 1, 1)
	out := buf.String()

	if strings.Contains(out, "1,234") {
		t.Errorf("index cell must match the artifact index, not a formatted count:\n%s", out)
	}
	if !strings.Contains(out, "1234") || !strings.Contains(out, "5,678") {
		t.Errorf("want plain index and separated count:\n%s", out)
	}
}

func TestPreviewTableEmpty(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.PreviewTable(nil, 0, 0)

	if !strings.Contains(buf.String(), "(no duplicate rows)") {
		t.Errorf("empty preview output:\n%s", buf.String())
	}
}

func TestNoANSIWhenColorDisabled(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.RunHeader("DRY RUN", "/photos", "/tmp/czk-reports", "20240101-120000", []string{"images", "videos"})
	r.ExitCode(11)
	r.Summary(report.Summary{TotalFound: 10, DuplicateGroups: 2, DuplicatesToRemove: 3, AfterRemoveEstimate: 7})
	r.Error("something failed", "details")

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output contains ANSI escapes despite disabled color:\n%q", buf.String())
	}
}

func TestRunHeader(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.RunHeader("EXECUTE", "/photos", "/tmp/czk-reports", "20240101-120000", []string{"images"})
	out := buf.String()

	for _, want := range []string{"Run Overview", "Run Mode", "EXECUTE", "Target Folder", "/photos", "Reports Folder", "Run Timestamp", "20240101-120000", "Media Types", "images"} {
		if !strings.Contains(out, want) {
			t.Errorf("run header missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryFormatsCounts(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.Summary(report.Summary{TotalFound: 1234567, DuplicateGroups: 42, DuplicatesToRemove: 1000, AfterRemoveEstimate: 1233567})
	out := buf.String()

	for _, want := range []string{"Total Files Scanned", "1,234,567", "Duplicate Groups Found", "Files Marked for Removal", "1,000", "Estimated Files Remaining", "1,233,567"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeIntroListsOnlySelectedMedia(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.AnalyzeIntro([]string{"images"})
	out := buf.String()

	for _, want := range []string{"media_inventory", "duplicates_images", "duplicates_images_json", "duplicates_images_expanded"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze intro missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "duplicates_videos") {
		t.Errorf("analyze intro lists tables that were not loaded:\n%s", out)
	}
}

func TestMediaHeaderIndentsCommand(t *testing.T) {
	r, buf := newTestRenderer(150)
	r.MediaHeader("images", "DRY RUN", "czkawka_cli image \\\n  -d <target-folder>")
	out := buf.String()

	if !strings.Contains(out, "IMAGES - DRY RUN") {
		t.Errorf("media header missing title:\n%s", out)
	}
	if !strings.Contains(out, "    czkawka_cli image \\") || !strings.Contains(out, "      -d <target-folder>") {
		t.Errorf("command lines not indented:\n%s", out)
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip short = %q", got)
	}
	if got := clip("a-very-long-filename.jpg", 10); got != "a-very-..." || len(got) != 10 {
		t.Errorf("clip long = %q", got)
	}
}
