// =============================================================================
// PAXML Exporter - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   paxml version
//
// OUTPUT:
//   PAXML Exporter
//   Version:    1.0.0
//   Schema:     PAXML 2.2
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/paxml-exporter/internal/config"
)

// These variables are set at build time using ldflags:
//   go build -ldflags "-X 'github.com/ginjaninja78/paxml-exporter/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, the PAXML schema version of the built-in vocabulary, build date and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("PAXML Exporter")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Schema:     PAXML %s\n", config.SchemaVersion)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
