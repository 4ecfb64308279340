package scan

import (
	"path/filepath"
	"strings"
)

const (
	reportFileExtensionConstant = ".json"
	pathSeparatorStringConstant = string(filepath.Separator)
)

// OutputPathMapper converts discovered metadata directory paths into report file paths.
//
// The relative portion of the report path deliberately includes the input
// root's own directory name, so the output tree mirrors the full repository
// name rather than only its internal structure.
type OutputPathMapper struct {
	relativePrefix string
	outputRoot     string
}

// NewOutputPathMapper constructs a mapper for the provided input and output roots.
func NewOutputPathMapper(inputRoot string, outputRoot string) *OutputPathMapper {
	trimmedInputRoot := trimTrailingSeparators(inputRoot)

	// When the input root has no parent component (for example the
	// filesystem root), filepath.Dir returns the root itself and relative
	// paths are computed against the root directly.
	relativePrefix := filepath.Dir(trimmedInputRoot)

	return &OutputPathMapper{
		relativePrefix: relativePrefix,
		outputRoot:     trimTrailingSeparators(outputRoot),
	}
}

// MapToOutputPath derives the report file path for the given metadata directory.
func (mapper *OutputPathMapper) MapToOutputPath(metadataDirectory string) string {
	relativePath := strings.TrimPrefix(metadataDirectory, mapper.relativePrefix)
	relativePath = strings.TrimPrefix(relativePath, pathSeparatorStringConstant)
	relativePath = strings.TrimSuffix(relativePath, gitMetadataDirectoryNameConstant)
	relativePath = strings.TrimSuffix(relativePath, pathSeparatorStringConstant)

	return filepath.Join(mapper.outputRoot, relativePath) + reportFileExtensionConstant
}
