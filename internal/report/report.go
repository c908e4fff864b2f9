// Package report normalizes czkawka duplicate output into stable relations
// and writes the CSV/JSON run artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
)

// Item is one file record inside a duplicate group. Known fields are typed;
// the verbatim original object is preserved in Raw for forensic inspection.
type Item struct {
	Path         string
	SizeBytes    int64
	ModifiedDate int64
	Raw          json.RawMessage
}

// Group is one duplicate cluster, in scanner output order.
type Group struct {
	Items []Item
}

// Row is one keep/remove record in the normalized report. Index is the
// group's 0-based input-order position, shared with the per-item and expanded
// relations so they always join; skipping a group leaves a gap, never a
// renumbering.
type Row struct {
	Index         int      `json:"index"`
	FileToKeep    string   `json:"file_to_keep"`
	FilesToRemove []string `json:"files_to_remove"`
	Count         int      `json:"count"`
}

// ItemRow is one (group, item) record with the original item kept verbatim.
type ItemRow struct {
	GroupIndex   int    `json:"group_index"`
	ItemIndex    int    `json:"item_index"`
	Path         string `json:"path"`
	SizeBytes    int64  `json:"size_bytes"`
	ModifiedDate int64  `json:"modified_date"`
	RawItemJSON  string `json:"raw_item_json"`
	SourceReport string `json:"source_report"`
}

// ExpandedRow is one removable file together with its group's keep context,
// denormalized for flat analytical filtering.
type ExpandedRow struct {
	GroupIndex       int    `json:"group_index"`
	FileToKeep       string `json:"file_to_keep"`
	RemovePath       string `json:"remove_path"`
	RemoveOrdinal    int    `json:"remove_ordinal"`
	GroupRemoveCount int    `json:"group_remove_count"`
}

// Summary aggregates one media kind's run.
type Summary struct {
	TotalFound          int `json:"total_found"`
	DuplicateGroups     int `json:"duplicate_groups"`
	DuplicatesToRemove  int `json:"duplicates_to_remove"`
	AfterRemoveEstimate int `json:"after_remove_estimate"`
}

// MalformedOutputError reports scanner JSON that does not match the expected
// group/item shape and could not be recovered by skipping groups.
type MalformedOutputError struct {
	Source string
	Err    error
}

func (e *MalformedOutputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("malformed scanner output in %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("malformed scanner output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// rawItem mirrors the known czkawka item fields; everything else stays in the
// raw JSON blob.
type rawItem struct {
	Path         string      `json:"path"`
	Size         json.Number `json:"size"`
	ModifiedDate json.Number `json:"modified_date"`
}

// ParseGroups decodes czkawka pretty JSON: a top-level array of groups, each
// an array of item objects. A top level that is not an array is fatal; a
// malformed group or item only skips that group with a warning, so one bad
// record cannot sink the whole report. Returns the number of skipped groups.
func ParseGroups(data []byte, source string) ([]Group, int, error) {
	var rawGroups []json.RawMessage
	if err := json.Unmarshal(data, &rawGroups); err != nil {
		return nil, 0, &MalformedOutputError{Source: source, Err: fmt.Errorf("expected top-level array: %w", err)}
	}

	groups := make([]Group, 0, len(rawGroups))
	skipped := 0
	for i, rawGroup := range rawGroups {
		group, err := parseGroup(rawGroup)
		if err != nil {
			skipped++
			log.Printf("Warning: skipping malformed group %d in %s: %v", i, source, err)
			continue
		}
		groups = append(groups, group)
	}
	return groups, skipped, nil
}

func parseGroup(raw json.RawMessage) (Group, error) {
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return Group{}, fmt.Errorf("expected group to be an array: %w", err)
	}

	items := make([]Item, 0, len(rawItems))
	for j, rawIt := range rawItems {
		var probe rawItem
		if err := json.Unmarshal(rawIt, &probe); err != nil {
			return Group{}, fmt.Errorf("item %d is not an object: %w", j, err)
		}
		if probe.Path == "" {
			return Group{}, fmt.Errorf("item %d has no path", j)
		}
		items = append(items, Item{
			Path:         probe.Path,
			SizeBytes:    numberToInt64(probe.Size),
			ModifiedDate: numberToInt64(probe.ModifiedDate),
			Raw:          compactRaw(rawIt),
		})
	}
	return Group{Items: items}, nil
}

func numberToInt64(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return v
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

func compactRaw(raw json.RawMessage) json.RawMessage {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return append(json.RawMessage(nil), raw...)
	}
	compacted, err := json.Marshal(v)
	if err != nil {
		return append(json.RawMessage(nil), raw...)
	}
	return compacted
}

// projectGroup orders a group by the AEB deletion rule czkawka applies
// (biggest first, then oldest, then path) and splits it into the kept file
// and the ordered removals.
func projectGroup(group Group) (string, []string) {
	ordered := make([]Item, len(group.Items))
	copy(ordered, group.Items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.SizeBytes != b.SizeBytes {
			return a.SizeBytes > b.SizeBytes
		}
		if a.ModifiedDate != b.ModifiedDate {
			return a.ModifiedDate < b.ModifiedDate
		}
		return a.Path < b.Path
	})

	remove := make([]string, 0, len(ordered)-1)
	for _, item := range ordered[1:] {
		remove = append(remove, item.Path)
	}
	return ordered[0].Path, remove
}

// BuildRows projects each group onto a keep file and its ordered removals.
// Group order follows scanner output and is never re-sorted; that keeps runs
// on identical input reproducible. Groups without removable files are
// tolerated and skipped. Normalization is a pure transform: paths are not
// checked against the filesystem here.
func BuildRows(groups []Group) []Row {
	rows := make([]Row, 0, len(groups))
	for groupIndex, group := range groups {
		if len(group.Items) < 2 {
			continue
		}
		keep, remove := projectGroup(group)
		rows = append(rows, Row{
			Index:         groupIndex,
			FileToKeep:    keep,
			FilesToRemove: remove,
			Count:         len(remove),
		})
	}
	return rows
}

// ReconcileExecuted revisits groups after a destructive run. When exactly one
// file of a group still exists on disk and at least one is gone, the survivor
// is the authoritative keep and the missing files (sorted) are the removals;
// otherwise the projection stands. This is deliberately outside BuildRows so
// normalization itself stays filesystem-free.
func ReconcileExecuted(groups []Group) []Row {
	rows := make([]Row, 0, len(groups))
	for groupIndex, group := range groups {
		if len(group.Items) < 2 {
			continue
		}
		keep, remove := projectGroup(group)

		var existing, removed []string
		for _, item := range group.Items {
			if pathExists(item.Path) {
				existing = append(existing, item.Path)
			} else {
				removed = append(removed, item.Path)
			}
		}
		if len(existing) == 1 && len(removed) > 0 {
			keep = existing[0]
			sort.Strings(removed)
			remove = removed
		}

		rows = append(rows, Row{
			Index:         groupIndex,
			FileToKeep:    keep,
			FilesToRemove: remove,
			Count:         len(remove),
		})
	}
	return rows
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BuildItemRows flattens every parsed group into per-item rows. Indices are
// 0-based. Unlike BuildRows this keeps single-item groups: the per-item
// relation is the forensic record of everything the scanner reported.
func BuildItemRows(groups []Group, sourceReport string) []ItemRow {
	var rows []ItemRow
	for groupIndex, group := range groups {
		for itemIndex, item := range group.Items {
			rows = append(rows, ItemRow{
				GroupIndex:   groupIndex,
				ItemIndex:    itemIndex,
				Path:         item.Path,
				SizeBytes:    item.SizeBytes,
				ModifiedDate: item.ModifiedDate,
				RawItemJSON:  string(item.Raw),
				SourceReport: sourceReport,
			})
		}
	}
	return rows
}

// ExpandRows emits one row per removable file. The ordinal is 1-based within
// its group.
func ExpandRows(rows []Row) []ExpandedRow {
	var expanded []ExpandedRow
	for _, row := range rows {
		for i, removePath := range row.FilesToRemove {
			expanded = append(expanded, ExpandedRow{
				GroupIndex:       row.Index,
				FileToKeep:       row.FileToKeep,
				RemovePath:       removePath,
				RemoveOrdinal:    i + 1,
				GroupRemoveCount: row.Count,
			})
		}
	}
	return expanded
}

// BuildSummary derives the aggregate counts for one media kind. A negative
// remaining estimate means the scanner reported more removals than files
// exist, which is malformed output and must surface as an error rather than
// be clamped away.
func BuildSummary(totalFound, duplicateGroups int, rows []Row) (Summary, error) {
	toRemove := 0
	for _, row := range rows {
		toRemove += row.Count
	}
	remaining := totalFound - toRemove
	if remaining < 0 {
		return Summary{}, &MalformedOutputError{
			Err: fmt.Errorf("%d files marked for removal exceeds %d files found", toRemove, totalFound),
		}
	}
	return Summary{
		TotalFound:          totalFound,
		DuplicateGroups:     duplicateGroups,
		DuplicatesToRemove:  toRemove,
		AfterRemoveEstimate: remaining,
	}, nil
}

// PreviewRow is the on-screen projection of a Row.
type PreviewRow struct {
	Index       int
	FileToKeep  string
	RemoveCount int
	FirstRemove string
}

// PreviewRows caps the normalized rows for terminal display. top <= 0 shows
// everything. Returns the preview rows plus shown/total counts.
func PreviewRows(rows []Row, top int) ([]PreviewRow, int, int) {
	total := len(rows)
	shown := total
	if top > 0 && top < shown {
		shown = top
	}

	preview := make([]PreviewRow, 0, shown)
	for _, row := range rows[:shown] {
		first := "-"
		if len(row.FilesToRemove) > 0 {
			first = row.FilesToRemove[0]
		}
		preview = append(preview, PreviewRow{
			Index:       row.Index,
			FileToKeep:  row.FileToKeep,
			RemoveCount: row.Count,
			FirstRemove: first,
		})
	}
	return preview, shown, total
}
