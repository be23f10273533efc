package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one evaluated deformer in the output manifest.
type ManifestEntry struct {
	Deformer string `json:"deformer"`
	Base     string `json:"base"`
	File     string `json:"file"`
	Image    string `json:"image,omitempty"`
	Vertices int    `json:"vertices"`
	Written  int    `json:"written"`
}

// WriteManifest writes the successful results to path as JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Deformer: r.Deformer,
			Base:     r.Base,
			File:     r.File,
			Image:    r.Image,
			Vertices: r.Vertices,
			Written:  r.Written,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
