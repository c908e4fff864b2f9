// Package config resolves one invocation's options from flags and CZK_*
// environment variables into an immutable run context.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/czk-tool/czk/internal/report"
)

// Defaults shared by flag registration and env resolution.
const (
	DefaultMedia           = "both"
	DefaultHashSize        = 32
	DefaultImageSimilarity = "High"
	DefaultVideoTolerance  = 10
	DefaultTop             = 50
	DefaultBinary          = "czkawka_cli"

	// Image options passed through to czkawka; fixed, not user-tunable.
	ImageHashAlg = "Blockhash"
	ImageFilter  = "Catmullrom"
)

// ImageSimilarityChoices are the presets czkawka accepts for -s.
var ImageSimilarityChoices = []string{"Minimal", "VeryLow", "Low", "Medium", "High", "VeryHigh", "None"}

var hashSizeChoices = map[int]bool{8: true, 16: true, 32: true, 64: true}

// DefaultOutDir is the shared reports directory under the system temp dir.
func DefaultOutDir() string {
	return filepath.Join(os.TempDir(), "czk-reports")
}

// Options is the immutable per-invocation run context. It is built once
// before any component runs and threads through all of them, driving file
// naming and mode behavior.
type Options struct {
	Mode      string // test, execute, analyze or viz
	TargetDir string
	OutDir    string
	Media     string // both, images or videos

	HashSize        int
	ImageSimilarity string
	VideoTolerance  int

	Top     int
	All     bool
	NoColor bool
	Binary  string

	// Derived by Finalize.
	Timestamp string
	BaseName  string
}

// NewEnv returns the viper instance used for CZK_* environment defaults
// (CZK_OUT_DIR, CZK_BINARY, CZK_TOP). Flags always win over environment.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CZK")
	v.AutomaticEnv()
	v.SetDefault("out_dir", DefaultOutDir())
	v.SetDefault("binary", DefaultBinary)
	v.SetDefault("top", DefaultTop)
	return v
}

// Validate checks every choice-constrained option.
func (o *Options) Validate() error {
	switch o.Media {
	case "both", "images", "videos":
	default:
		return fmt.Errorf("invalid --media %q (want both, images or videos)", o.Media)
	}
	if !hashSizeChoices[o.HashSize] {
		return fmt.Errorf("invalid --hash-size %d (want 8, 16, 32 or 64)", o.HashSize)
	}
	if !validSimilarity(o.ImageSimilarity) {
		return fmt.Errorf("invalid --image-similarity %q", o.ImageSimilarity)
	}
	if o.VideoTolerance < 0 || o.VideoTolerance > 20 {
		return fmt.Errorf("invalid --video-tolerance %d (want 0..20)", o.VideoTolerance)
	}
	if o.Top <= 0 {
		return fmt.Errorf("invalid --top %d (must be greater than 0)", o.Top)
	}
	return nil
}

func validSimilarity(value string) bool {
	for _, choice := range ImageSimilarityChoices {
		if value == choice {
			return true
		}
	}
	return false
}

// Finalize validates the options, resolves both directories to absolute
// paths, checks the scan target exists and stamps the run. After Finalize
// the options are treated as read-only.
func (o *Options) Finalize(now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	target, err := filepath.Abs(ExpandPath(o.TargetDir))
	if err != nil {
		return fmt.Errorf("cannot resolve target directory: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("directory does not exist or is not a directory: %s", target)
	}
	o.TargetDir = target

	out, err := filepath.Abs(ExpandPath(o.OutDir))
	if err != nil {
		return fmt.Errorf("cannot resolve output directory: %w", err)
	}
	o.OutDir = out

	o.Timestamp = now.Format("20060102-150405")
	o.BaseName = report.SanitizeBaseName(filepath.Base(target))
	return nil
}

// MediaTargets expands the media selection into the ordered list of scans.
func (o *Options) MediaTargets() []string {
	if o.Media == "both" {
		return []string{"images", "videos"}
	}
	return []string{o.Media}
}

// DryRun reports whether this run may delete files. Only execute mode is
// destructive; every other mode passes czkawka its dry-run flag.
func (o *Options) DryRun() bool {
	return o.Mode != "execute"
}

// ModeLabel is the user-facing name of the run mode.
func (o *Options) ModeLabel() string {
	switch o.Mode {
	case "execute":
		return "EXECUTE"
	case "analyze":
		return "ANALYZE (DRY RUN)"
	case "viz":
		return "VIZ (DRY RUN)"
	default:
		return "DRY RUN"
	}
}

// ExpandPath expands a leading ~ to the user's home directory and cleans the
// result.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Clean(filepath.Join(home, path[1:]))
		}
	}
	return filepath.Clean(path)
}
