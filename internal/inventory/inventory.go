// Package inventory walks a directory tree and builds the flat file relation
// used for analytical cross-referencing. It is independent of duplicate
// detection.
package inventory

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Media bucket markers used in the media_inventory relation. Files matching
// neither extension set are recorded as MediaOther rather than dropped; the
// inventory has to be complete for cross-referencing.
const (
	MediaImages = "images"
	MediaVideos = "videos"
	MediaOther  = "other"
)

// Extension sets mirror the czkawka image/video pickers plus common variants
// users actually store.
var imageExtensions = map[string]bool{
	"avif": true, "bmp": true, "gif": true, "hdr": true, "heic": true,
	"heif": true, "jpeg": true, "jpg": true, "kra": true, "png": true,
	"svg": true, "tif": true, "tiff": true, "webp": true,
}

var videoExtensions = map[string]bool{
	"3gp": true, "avi": true, "flv": true, "gifv": true, "m4p": true,
	"m4v": true, "mkv": true, "mov": true, "mp4": true, "mpeg": true,
	"mpg": true, "ogv": true, "vob": true, "webm": true, "wmv": true,
}

// Entry is one row of the media_inventory relation.
type Entry struct {
	MediaType     string
	Path          string
	FileName      string
	Extension     string
	SizeBytes     int64
	ModifiedEpoch int64
}

// Extension extracts a lowercase extension without the leading dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeFor maps an extension onto its media bucket.
func MediaTypeFor(extension string) string {
	switch {
	case imageExtensions[extension]:
		return MediaImages
	case videoExtensions[extension]:
		return MediaVideos
	default:
		return MediaOther
	}
}

// Count walks root and counts regular files in the given media bucket.
// Symlinks are not followed. Used for the summary's total_found metric.
func Count(root, media string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if MediaTypeFor(Extension(d.Name())) == media {
			total++
		}
		return nil
	})
	return total, err
}

// Collect walks root and returns one entry per regular file, every file
// tagged with its media bucket. Files that cannot be stat'd are skipped.
// Traversal order is not a contract; entries are sorted by (media_type, path)
// for deterministic downstream loading. onFile, when non-nil, is invoked once
// per recorded entry so callers can drive progress reporting.
func Collect(root string, onFile func()) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		extension := Extension(d.Name())
		entries = append(entries, Entry{
			MediaType:     MediaTypeFor(extension),
			Path:          path,
			FileName:      d.Name(),
			Extension:     extension,
			SizeBytes:     info.Size(),
			ModifiedEpoch: info.ModTime().Unix(),
		})
		if onFile != nil {
			onFile()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].MediaType != entries[j].MediaType {
			return entries[i].MediaType < entries[j].MediaType
		}
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}
