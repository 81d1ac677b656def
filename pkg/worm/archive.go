package worm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArchivalRecord is the payload appended as the chain's own evidence entry
// when an artifact is archived (§4.D "Archival").
type ArchivalRecord struct {
	Kind           string `json:"kind"`
	OriginalPath   string `json:"original_path"`
	ArchivePath    string `json:"archive_path"`
	Reason         string `json:"reason"`
}

// Archive copies srcPath into archiveDir under a timestamped name and
// records the archival as its own evidence entry, per §4.D. The caller
// supplies reason ("file-drift" | "explicit-request").
func (c *Chain) Archive(srcPath, archiveDir, reason string) (Entry, error) {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("worm: create archive dir: %w", err)
	}

	stamp := c.clock().UTC().Format("20060102T150405.000000000Z")
	dest := filepath.Join(archiveDir, fmt.Sprintf("%s.%s", stamp, filepath.Base(srcPath)))

	if err := copyFile(srcPath, dest); err != nil {
		return Entry{}, fmt.Errorf("worm: archive copy: %w", err)
	}

	return c.Append(ArchivalRecord{
		Kind:         "ARCHIVAL",
		OriginalPath: srcPath,
		ArchivePath:  dest,
		Reason:       reason,
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
