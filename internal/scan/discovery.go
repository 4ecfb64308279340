package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

const gitMetadataDirectoryNameConstant = ".git"

// MetadataDirectoryDiscoverer locates git metadata directories on disk.
type MetadataDirectoryDiscoverer interface {
	DiscoverMetadataDirectories(inputRoot string) ([]string, error)
}

// FilesystemDiscoverer discovers git metadata directories via filepath.WalkDir.
type FilesystemDiscoverer struct{}

// NewFilesystemDiscoverer constructs a discoverer backed by the local filesystem.
func NewFilesystemDiscoverer() *FilesystemDiscoverer {
	return &FilesystemDiscoverer{}
}

// DiscoverMetadataDirectories walks the input root and returns every directory named .git, sorted.
// Directories below a discovered metadata directory are not descended into.
func (discoverer *FilesystemDiscoverer) DiscoverMetadataDirectories(inputRoot string) ([]string, error) {
	trimmedRoot := trimTrailingSeparators(inputRoot)

	var metadataDirectories []string
	walkError := filepath.WalkDir(trimmedRoot, func(path string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}

		if !directoryEntry.IsDir() {
			return nil
		}

		if directoryEntry.Name() != gitMetadataDirectoryNameConstant {
			return nil
		}

		metadataDirectories = append(metadataDirectories, path)
		return fs.SkipDir
	})
	if walkError != nil {
		return nil, walkError
	}

	sort.Strings(metadataDirectories)
	return metadataDirectories, nil
}

// trimTrailingSeparators removes trailing path separators while preserving a bare root path.
func trimTrailingSeparators(candidatePath string) string {
	trimmed := strings.TrimRight(candidatePath, string(filepath.Separator))
	if len(trimmed) == 0 {
		return candidatePath
	}
	return trimmed
}
