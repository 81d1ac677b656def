package repository

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemReader implements Reader directly over a directory tree.
type FilesystemReader struct {
	root string
}

// NewFilesystemReader constructs a FilesystemReader rooted at root.
func NewFilesystemReader(root string) *FilesystemReader {
	return &FilesystemReader{root: root}
}

func (r *FilesystemReader) abs(path string) string {
	return filepath.Join(r.root, path)
}

func (r *FilesystemReader) Exists(path string) bool {
	_, err := os.Stat(r.abs(path))
	return err == nil
}

func (r *FilesystemReader) Read(path string) ([]byte, error) {
	return os.ReadFile(r.abs(path))
}

// List walks path and returns every repository-relative file path matching
// pattern (a filepath.Match-style glob applied to the file's base name).
func (r *FilesystemReader) List(path, pattern string) ([]string, error) {
	root := r.abs(path)
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		matched, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository: list %s: %w", path, err)
	}
	sort.Strings(out)
	return out, nil
}

// SnapshotDigest computes a stable digest over every tracked file's
// relative path and content, for use as the validator result cache's
// repository_snapshot_digest key component.
func (r *FilesystemReader) SnapshotDigest() ([]byte, error) {
	var paths []string
	err := filepath.WalkDir(r.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(r.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(r.root, rel))
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(h, "%s\x00", filepath.ToSlash(rel))
		h.Write(data)
		h.Write([]byte{0})
	}
	return h.Sum(nil), nil
}

// ChangedFiles shells out to git diff when the repository is a git
// worktree; an external collaborator per §6, not a core concern.
func (r *FilesystemReader) ChangedFiles(fromRef, toRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", fromRef, toRef)
	cmd.Dir = r.root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("repository: git diff %s..%s: %w", fromRef, toRef, err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	var changed []string
	for _, l := range lines {
		if l != "" {
			changed = append(changed, l)
		}
	}
	return changed, nil
}
