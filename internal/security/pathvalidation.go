package security

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidatePathWithinDirectory checks if a file path is within a safe directory.
// It prevents path traversal attacks by ensuring the resolved path doesn't escape
// the specified safe directory.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	// Clean the path to resolve . and .. components
	cleanPath := filepath.Clean(filePath)

	// Get absolute paths for proper validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	// Resolve symlinks on the longest existing prefix of each path so a link
	// inside the safe directory cannot carry the path outside it.
	resolve := func(p string) string {
		rest := ""
		for filepath.Dir(p) != p {
			if r, err := filepath.EvalSymlinks(p); err == nil {
				return filepath.Join(r, rest)
			}
			rest = filepath.Join(filepath.Base(p), rest)
			p = filepath.Dir(p)
		}
		return filepath.Join(p, rest)
	}
	absPath, absSafeDir = resolve(absPath), resolve(absSafeDir)

	// Check if path is within safe directory
	relPath, err := filepath.Rel(absSafeDir, absPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}

	// Reject paths that escape the safe directory
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}

	return nil
}

// ValidatePathWithinAllowedDirs checks if a file path is within any of the allowed directories.
// Returns nil if the path is valid, or an error describing why it was rejected.
func ValidatePathWithinAllowedDirs(filePath string, allowedDirs []string) error {
	if len(allowedDirs) == 0 {
		return fmt.Errorf("no allowed directories specified")
	}

	for _, dir := range allowedDirs {
		if err := ValidatePathWithinDirectory(filePath, dir); err == nil {
			return nil // Path is valid within this directory
		}
	}

	// Path is not within any allowed directory
	return fmt.Errorf("path must be within one of the allowed directories: %v", allowedDirs)
}

// ValidateExportPath validates a file path for export operations.
// It ensures the path is within either the temp directory or current working directory.
func ValidateExportPath(filePath string) error {
	tempDir := os.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	allowedDirs := []string{tempDir, cwd}
	return ValidatePathWithinAllowedDirs(filePath, allowedDirs)
}

// ValidateExportExtension checks that filePath ends in one of the allowed
// extensions (case-insensitive, dot-prefixed, e.g. ".png"). Report handlers
// call this alongside ValidateExportPath so a save_path cannot be used to
// overwrite an unrelated file type (a .go source file, a database file)
// that happens to sit inside the allowed directory.
func ValidateExportExtension(filePath string, allowed ...string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return nil
		}
	}
	return fmt.Errorf("save_path must end in one of %v, got %q", allowed, filePath)
}

// ValidateOutputPath validates a file path for CLI-driven output (sweep CSV
// files, batch reports): the same temp-dir-or-cwd policy as ValidateExportPath,
// under a distinct name so callers reading the output path of a local
// command aren't confused with the export-over-HTTP use case.
func ValidateOutputPath(filePath string) error {
	return ValidateExportPath(filePath)
}

var sanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// SanitizeFilename strips a string down to characters safe for use as a
// filesystem path component, collapsing runs of unsafe characters (path
// separators, spaces, punctuation) into a single underscore and trimming
// leading/trailing dots and underscores left over from that collapse. Used
// to turn a user-supplied sweep parameter name into a CSV filename
// component without letting it traverse outside the output directory.
func SanitizeFilename(name string) string {
	cleaned := sanitizePattern.ReplaceAllString(name, "_")
	cleaned = strings.Trim(cleaned, "._")
	if len(cleaned) > 128 {
		cleaned = cleaned[:128]
	}
	if cleaned == "" {
		return "unknown"
	}
	return cleaned
}
