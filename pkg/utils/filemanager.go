// =============================================================================
// PAXML Exporter - File Manager Utility
// =============================================================================
//
// This module provides the file handling around the CLI:
//   - Directory management
//   - Archival of imported source files
//   - Output file naming and collision-safe writes
//   - Error logs for blocked exports
//
// ARCHIVAL STRATEGY:
//   - Imported files are moved to the input archive once the store has them
//   - Failed imports stay in their original location
//   - An existing file is never overwritten; a numeric suffix is added instead
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

// maxSuffix bounds the search for a free file name.
const maxSuffix = 1000

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the CLI.
type FileManager struct {
	// OutputDir is where export documents and error logs are written.
	OutputDir string

	// InputArchiveDir receives imported source files.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/deviations.csv
	UseTimestampSubdirs bool

	now func() time.Time
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		now:             time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and archive directories.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an imported file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails. The source file is left in place then.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archiveDir := fm.InputArchiveDir
	if fm.UseTimestampSubdirs {
		now := fm.now()
		archiveDir = filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath, err := freePath(filepath.Join(archiveDir, filepath.Base(filePath)))
	if err != nil {
		return "", err
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return archivePath, nil
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// GenerateOutputFileName expands a file name format.
//
// PARAMETERS:
//   - format: The format string. Placeholders:
//     {name}      - the exporter's suggested file name, without extension
//     {uuid}      - a random UUID
//     {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - current date (YYYYMMDD)
//     {time}      - current time (HHMMSS)
//   - params: Extra placeholder values, keyed without braces.
//
// RETURNS:
//   - The file name, always ending in ".xml".
//
// EXAMPLE:
//
//	format: "{name}_{uuid}.xml"
//	params: {"name": "paxml-export-2024-05-15"}
//	output: "paxml-export-2024-05-15_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xml"
func (fm *FileManager) GenerateOutputFileName(format string, params map[string]string) string {
	now := fm.now()
	if strings.TrimSpace(format) == "" {
		format = "{name}.xml"
	}

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	result = filepath.Base(result)

	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}
	return result
}

// WriteOutputFile writes content into the output directory without replacing
// an existing file.
//
// RETURNS:
//   - The path actually written. It differs from OutputDir/name when that
//     name was taken.
func (fm *FileManager) WriteOutputFile(name string, content []byte) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	target := filepath.Join(fm.OutputDir, filepath.Base(name))
	for attempt := 0; attempt < maxSuffix; attempt++ {
		path := withSuffix(target, attempt)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create output file: %w", err)
		}
		if _, err := file.Write(content); err != nil {
			file.Close()
			return "", fmt.Errorf("failed to write output file: %w", err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("failed to write output file: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s", target)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// WriteErrorLog writes the issues of a blocked export next to where the
// document would have gone.
//
// PARAMETERS:
//   - exportID: Identifies the export run in the log header.
//   - issues: The issues to write. Nothing is written when empty.
//
// RETURNS:
//   - The path to the error log file, or "" when nothing was written.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(exportID string, issues []types.ValidationIssue) (string, error) {
	if len(issues) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	now := fm.now()
	logPath, err := freePath(filepath.Join(fm.OutputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405"))))
	if err != nil {
		return "", err
	}

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "PAXML Exporter - Error Log\n"+
		"Export ID: %s\n"+
		"Generated: %s\n"+
		"Total Issues: %d\n"+
		"================================================================================\n\n",
		exportID, now.Format("2006-01-02 15:04:05"), len(issues))

	for i, issue := range issues {
		fmt.Fprintf(writer, "Issue #%d\n"+
			"  Severity:  %s\n"+
			"  Code:      %s\n"+
			"  Message:   %s\n",
			i+1, issue.Severity, issue.Code, issue.Message)
		if issue.EmployeeID != "" {
			fmt.Fprintf(writer, "  Employee:  %s\n", issue.EmployeeID)
		}
		if issue.RecordID != "" {
			fmt.Fprintf(writer, "  Record:    %s\n", issue.RecordID)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// freePath returns path, or path with the first free numeric suffix.
func freePath(path string) (string, error) {
	for attempt := 0; attempt < maxSuffix; attempt++ {
		candidate := withSuffix(path, attempt)
		if !FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s", path)
}

// withSuffix turns "a/b.xml" into "a/b-2.xml" for n=2. n=0 returns path.
func withSuffix(path string, n int) string {
	if n == 0 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), n, ext)
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
