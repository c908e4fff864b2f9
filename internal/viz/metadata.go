package viz

import (
	"image"
	"os"

	// Register the stdlib decoders; input is not always jpeg.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ItemMetadata describes one previewed file. Zero width/height means the
// dimensions are unknown (missing file, undecodable image, or a video).
type ItemMetadata struct {
	Exists        bool
	SizeBytes     int64
	ModifiedEpoch int64
	Width         int
	Height        int
}

// ProbeMetadata stats each path once and, for images, decodes just the header
// for pixel dimensions. Unreadable files simply come back with Exists=false;
// the report renders a placeholder instead of failing.
func ProbeMetadata(paths []string, media string) map[string]ItemMetadata {
	metadata := make(map[string]ItemMetadata, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, seen := metadata[path]; seen {
			continue
		}
		metadata[path] = probeOne(path, media)
	}
	return metadata
}

func probeOne(path, media string) ItemMetadata {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ItemMetadata{}
	}
	meta := ItemMetadata{
		Exists:        true,
		SizeBytes:     info.Size(),
		ModifiedEpoch: info.ModTime().Unix(),
	}
	if media != "images" {
		return meta
	}

	f, err := os.Open(path)
	if err != nil {
		return meta
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err == nil && cfg.Width > 0 && cfg.Height > 0 {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}
	return meta
}
