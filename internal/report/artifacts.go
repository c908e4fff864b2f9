package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// ArtifactError reports a filesystem failure while persisting run artifacts.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("failed to write artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Artifact is the JSON artifact payload: a superset of the CSV containing the
// normalized groups, the per-item forensic rows and the run summary. It
// carries no timestamps of its own, so two runs over identical scanner output
// produce byte-identical artifacts apart from the filename.
type Artifact struct {
	Media   string    `json:"media"`
	Summary Summary   `json:"summary"`
	Groups  []Row     `json:"groups"`
	Items   []ItemRow `json:"items"`
}

var baseNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeBaseName reduces a folder name to a filesystem- and shell-safe
// artifact prefix.
func SanitizeBaseName(name string) string {
	sanitized := baseNameSanitizer.ReplaceAllString(name, "-")
	sanitized = trimDashes(sanitized)
	if sanitized == "" {
		return "root"
	}
	return sanitized
}

func trimDashes(s string) string {
	for len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '-' {
		s = s[:len(s)-1]
	}
	return s
}

// ArtifactPaths returns collision-free JSON and CSV paths following the
// frozen <base>-<media>-<timestamp> naming scheme. A numeric suffix is added
// when both names are already taken, so two invocations in the same second
// cannot clobber each other.
func ArtifactPaths(outDir, base, media, timestamp string) (jsonPath, csvPath string) {
	for counter := 0; ; counter++ {
		suffix := ""
		if counter > 0 {
			suffix = fmt.Sprintf("-%d", counter)
		}
		stem := fmt.Sprintf("%s-%s-%s%s", base, media, timestamp, suffix)
		jsonPath = filepath.Join(outDir, stem+".json")
		csvPath = filepath.Join(outDir, stem+".csv")
		if !fileExists(jsonPath) && !fileExists(csvPath) {
			return jsonPath, csvPath
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileAtomic writes through a temp file in the destination directory and
// renames it into place, so a failed write never leaves a partial artifact
// visible.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".czk-artifact-*")
	if err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &ArtifactError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ArtifactError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ArtifactError{Path: path, Err: err}
	}
	return nil
}

// WriteArtifacts persists the normalized report for one media kind as a CSV
// and JSON pair. The output directory is created if absent. Any failure is an
// ArtifactError and fails the media kind's run.
func WriteArtifacts(outDir string, artifact Artifact, jsonPath, csvPath string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return &ArtifactError{Path: outDir, Err: err}
	}

	err := WriteFileAtomic(csvPath, func(w io.Writer) error {
		return WriteCSV(w, artifact.Groups)
	})
	if err != nil {
		return err
	}

	return WriteFileAtomic(jsonPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(normalizeArtifact(artifact))
	})
}

func normalizeArtifact(a Artifact) Artifact {
	if a.Groups == nil {
		a.Groups = []Row{}
	}
	if a.Items == nil {
		a.Items = []ItemRow{}
	}
	return a
}
