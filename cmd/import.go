// =============================================================================
// PAXML Exporter - Import Command
// =============================================================================
//
// This file defines the 'import' command, which loads CSV or XLSX files into
// the configured store.
//
// COMMAND USAGE:
//   paxml import --employees staff.csv --deviations deviations.csv
//   paxml import --schedules schedules.xlsx --sheet "Maj"
//
// PROCESSING:
//   1. Parse every given file (employees first, so later files can refer to them)
//   2. Save the records; ids present in a file replace stored rows
//   3. Archive the imported files once every save succeeded
//
// A file that fails to parse or save aborts the import and nothing is
// archived. Files stay where they were so they can be fixed and re-imported.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/paxml-exporter/internal/csvparser"
	"github.com/ginjaninja78/paxml-exporter/internal/schedule"
	"github.com/ginjaninja78/paxml-exporter/internal/store"
	"github.com/ginjaninja78/paxml-exporter/internal/xlsxparser"
	"github.com/ginjaninja78/paxml-exporter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	importEmployees  string
	importDeviations string
	importLeaves     string
	importSchedules  string

	importDelimiter  string
	importEncoding   string
	importHeaderRows int
	importSheet      string
	importNoArchive  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import employees, deviations, leave and schedules from CSV or XLSX",
	Long: `The import command reads source files and stores their records.

Headers are matched by name in Swedish or English (anstid/employee_id,
datum/date, tidkod/time_code, ...). XLSX files are supported for every kind;
the first sheet whose name does not start with "_" is read unless --sheet
is given.

Schedule rows that only carry an hours total get a start, end and break
computed from the schedule policy in the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importEmployees, "employees", "", "Employee file")
	importCmd.Flags().StringVar(&importDeviations, "deviations", "", "Deviation file")
	importCmd.Flags().StringVar(&importLeaves, "leaves", "", "Leave request file")
	importCmd.Flags().StringVar(&importSchedules, "schedules", "", "Schedule file")

	importCmd.Flags().StringVar(&importDelimiter, "delimiter", ",", `CSV delimiter ("," ";" "tab" "pipe")`)
	importCmd.Flags().StringVar(&importEncoding, "encoding", "utf-8", "CSV encoding (utf-8, utf-16, windows-1252, iso-8859-1)")
	importCmd.Flags().IntVar(&importHeaderRows, "header-rows", 1, "Number of CSV header lines")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name")
	importCmd.Flags().BoolVar(&importNoArchive, "no-archive", false, "Leave imported files in place")
}

// =============================================================================
// MAIN IMPORT FUNCTION
// =============================================================================

// importJob is one file and how to store its table.
type importJob struct {
	kind string
	path string
	save func(ctx context.Context, table *csvparser.Table) (int, error)
}

func runImport(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	jobs := importJobs(a.store, a.cfg.Schedule)
	if len(jobs) == 0 {
		return fmt.Errorf("nothing to import: give at least one of --employees, --deviations, --leaves, --schedules")
	}

	settings := csvparser.Settings{
		Delimiter:  importDelimiter,
		Encoding:   importEncoding,
		HeaderRows: importHeaderRows,
	}

	var imported []string
	for _, job := range jobs {
		path := resolveInput(job.path, a.cfg.Export.InputDir)
		log := a.logger.WithFields(logrus.Fields{"kind": job.kind, "file": path})

		table, err := readTable(path, settings)
		if err != nil {
			return fmt.Errorf("%s: %w", job.kind, err)
		}
		count, err := job.save(ctx, table)
		if err != nil {
			return fmt.Errorf("%s: %w", job.kind, err)
		}

		log.WithField("records", count).Info("Imported file")
		fmt.Printf("Imported %d %s from %s\n", count, job.kind, path)
		imported = append(imported, path)
	}

	// =========================================================================
	// ARCHIVE IMPORTED FILES
	// =========================================================================

	if importNoArchive {
		return nil
	}
	fm := utils.NewFileManager(a.cfg.Export.OutputDir, a.cfg.Export.ArchiveDir)
	fm.UseTimestampSubdirs = true
	for _, path := range imported {
		archived, err := fm.ArchiveInputFile(path)
		if err != nil {
			a.logger.WithError(err).WithField("file", path).Warn("Failed to archive imported file")
			continue
		}
		a.logger.WithFields(logrus.Fields{"file": path, "archive": archived}).Debug("Archived file")
	}
	return nil
}

// importJobs lists the requested files in dependency order.
func importJobs(st store.Writer, policy schedule.EstimationPolicy) []importJob {
	var jobs []importJob
	if importEmployees != "" {
		jobs = append(jobs, importJob{kind: "employees", path: importEmployees,
			save: func(ctx context.Context, table *csvparser.Table) (int, error) {
				records, err := table.Employees()
				if err != nil {
					return 0, err
				}
				return len(records), st.SaveEmployees(ctx, records)
			}})
	}
	if importDeviations != "" {
		jobs = append(jobs, importJob{kind: "deviations", path: importDeviations,
			save: func(ctx context.Context, table *csvparser.Table) (int, error) {
				records, err := table.Deviations()
				if err != nil {
					return 0, err
				}
				return len(records), st.SaveDeviations(ctx, records)
			}})
	}
	if importLeaves != "" {
		jobs = append(jobs, importJob{kind: "leave requests", path: importLeaves,
			save: func(ctx context.Context, table *csvparser.Table) (int, error) {
				records, err := table.Leaves()
				if err != nil {
					return 0, err
				}
				return len(records), st.SaveLeaves(ctx, records)
			}})
	}
	if importSchedules != "" {
		jobs = append(jobs, importJob{kind: "schedules", path: importSchedules,
			save: func(ctx context.Context, table *csvparser.Table) (int, error) {
				records, err := table.Schedules(policy)
				if err != nil {
					return 0, err
				}
				return len(records), st.SaveSchedules(ctx, records)
			}})
	}
	return jobs
}

// readTable picks the parser from the file extension.
func readTable(path string, settings csvparser.Settings) (*csvparser.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.ParseSheet(path, importSheet)
	default:
		return csvparser.Parse(path, settings)
	}
}

// resolveInput looks a bare file name up in the input directory when it does
// not exist in the working directory.
func resolveInput(path, inputDir string) string {
	if filepath.Base(path) != path || inputDir == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(inputDir, path)
}
