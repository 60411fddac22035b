// =============================================================================
// PAXML Exporter - Export Command
// =============================================================================
//
// This file defines the 'export' command, which runs one export against the
// configured store and writes the document to the output directory.
//
// COMMAND USAGE:
//   paxml export [flags]
//
// FLAGS:
//   --employees       : Employee ids to include (comma separated). Empty = all
//   --from, --to      : Inclusive date window (YYYY-MM-DD)
//   --with-schedules  : Add the employees' schedules to the document
//   --out             : Output directory (default: export.output_dir)
//   --dry-run         : Validate only; write nothing
//
// ON A BLOCKED EXPORT:
//   - No document is written
//   - An error log is created in the output directory
//   - The command exits with an error
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
	"github.com/ginjaninja78/paxml-exporter/internal/validation"
	"github.com/ginjaninja78/paxml-exporter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	exportEmployees     []string
	exportFrom          string
	exportTo            string
	exportWithSchedules bool
	exportOutDir        string
	exportDryRun        bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export approved records to a PAXML document",
	Long: `The export command loads approved deviations and leave requests from the
configured store, validates them and writes a PAXML document.

Any validation error blocks the export. Warnings and info notices are
printed but do not block. Records dated in the future are always excluded
and reported as info notices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVar(&exportEmployees, "employees", nil, "Employee ids to export (comma separated)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First date to export (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last date to export (YYYY-MM-DD)")
	exportCmd.Flags().BoolVar(&exportWithSchedules, "with-schedules", false, "Include schedules in the document")
	exportCmd.Flags().StringVar(&exportOutDir, "out", "", "Output directory (default: export.output_dir)")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "Validate without writing any file")
}

// =============================================================================
// MAIN EXPORT FUNCTION
// =============================================================================

func runExport(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	exporter, err := a.newExporter()
	if err != nil {
		return err
	}

	req := types.ExportRequest{
		EmployeeIDs:      exportEmployees,
		StartDate:        exportFrom,
		EndDate:          exportTo,
		IncludeSchedules: exportWithSchedules,
	}
	exportID := uuid.NewString()
	log := a.logger.WithField("export_id", exportID)

	result, err := exporter.ExportFrom(ctx, a.store, req)
	if err != nil {
		return err
	}

	outDir := exportOutDir
	if outDir == "" {
		outDir = a.cfg.Export.OutputDir
	}
	fm := utils.NewFileManager(outDir, a.cfg.Export.ArchiveDir)

	printSummary(result.Summary, result.Issues)

	// =========================================================================
	// BLOCKED: WRITE THE ERROR LOG
	// =========================================================================

	if result.Blocked {
		if exportDryRun {
			return fmt.Errorf("export blocked by %d validation error(s)", result.Summary.ErrorCount)
		}
		logPath, err := fm.WriteErrorLog(exportID, result.Issues)
		if err != nil {
			log.WithError(err).Error("Failed to write error log")
		}
		log.WithField("error_log", logPath).Warn("Export blocked")
		return fmt.Errorf("export blocked by %d validation error(s), see %s", result.Summary.ErrorCount, logPath)
	}

	if exportDryRun {
		fmt.Printf("Dry run: %d transaction(s) would be exported as %s\n", len(result.Transactions), result.Filename)
		return nil
	}

	// =========================================================================
	// WRITE THE DOCUMENT
	// =========================================================================

	name := fm.GenerateOutputFileName(a.cfg.Export.FileNameFormat, map[string]string{
		"name": strings.TrimSuffix(result.Filename, ".xml"),
	})
	path, err := fm.WriteOutputFile(name, []byte(result.Document))
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"file":         path,
		"transactions": len(result.Transactions),
		"schedules":    len(result.Schedules),
	}).Info("Export written")
	fmt.Printf("Wrote %s (%d transaction(s))\n", path, len(result.Transactions))
	return nil
}

func printSummary(summary validation.Result, issues []types.ValidationIssue) {
	fmt.Printf("Records: %d  Errors: %d  Warnings: %d  Info: %d\n",
		summary.TotalRecords, summary.ErrorCount, summary.WarningCount, summary.InfoCount)
	if len(issues) > 0 {
		fmt.Println(validation.FormatIssues(issues))
	}
}
