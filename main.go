// =============================================================================
// PAXML Exporter - Main Entry Point
// =============================================================================
//
// USAGE:
//   paxml serve       - Run the export HTTP API
//   paxml export      - Write a PAXML document for approved records
//   paxml import      - Load CSV/XLSX files into the store
//   paxml transition  - Change the status of a deviation or leave request
//   paxml validate    - Check configuration and vocabulary
//   paxml version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Export pipeline, stores, parsers and the HTTP API
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/paxml-exporter/cmd"
)

func main() {
	cmd.Execute()
}
