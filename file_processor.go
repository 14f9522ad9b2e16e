package tabimport

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// fileProcessor collects the input files of a run
type fileProcessor struct {
	validator *validator
	logger    *slog.Logger
}

// newFileProcessor creates a new file processor instance
func newFileProcessor(logger *slog.Logger) *fileProcessor {
	return &fileProcessor{
		validator: newValidator(),
		logger:    logger,
	}
}

// collectFilesFromPaths validates the explicit input paths. Missing and
// unsupported files are skipped with a warning; directories contribute
// their supported files. Paths resolving to the same file are kept once.
func (fp *fileProcessor) collectFilesFromPaths(paths []string, recursive bool) ([]string, error) {
	var collectedPaths []string
	processedFiles := make(map[string]bool)

	for _, path := range paths {
		if err := fp.validator.validatePath(path); err != nil {
			fp.logger.Warn("skipping input", "path", path, "error", err)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if info.IsDir() {
			dirFiles, err := fp.collectFilesFromDirectory(path, recursive, processedFiles)
			if err != nil {
				return nil, err
			}
			collectedPaths = append(collectedPaths, dirFiles...)
			continue
		}

		if err := fp.addSingleFile(path, processedFiles, &collectedPaths); err != nil {
			return nil, err
		}
	}

	return collectedPaths, nil
}

// collectFilesFromInputDir lists the supported files of the input folder.
// A missing folder yields no files and a warning.
func (fp *fileProcessor) collectFilesFromInputDir(dir string, recursive bool) ([]string, error) {
	if err := fp.validator.validateInputDir(dir); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			fp.logger.Warn("input folder does not exist, nothing to import", "path", dir)
			return nil, nil
		}
		return nil, err
	}
	return fp.collectFilesFromDirectory(dir, recursive, make(map[string]bool))
}

// collectFilesFromDirectory collects the supported files of a directory,
// sorted by path. Subdirectories are walked only when recursive is set.
func (fp *fileProcessor) collectFilesFromDirectory(dirPath string, recursive bool, processedFiles map[string]bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dirPath, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filePath != dirPath && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if isSupportedFile(filePath) {
			found = append(found, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	sort.Strings(found)

	var collectedPaths []string
	for _, filePath := range found {
		if err := fp.addSingleFile(filePath, processedFiles, &collectedPaths); err != nil {
			return nil, err
		}
	}
	return collectedPaths, nil
}

// addSingleFile adds a file unless the same absolute path was already added
func (fp *fileProcessor) addSingleFile(filePath string, processedFiles map[string]bool, collectedPaths *[]string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	if processedFiles[absPath] {
		fp.logger.Debug("skipping duplicate input", "path", filePath)
		return nil
	}
	processedFiles[absPath] = true
	*collectedPaths = append(*collectedPaths, filePath)
	return nil
}
