// =============================================================================
// PAXML Exporter - Transition Command
// =============================================================================
//
// COMMAND USAGE:
//   paxml transition --kind deviation --id 12 --to approved
//   paxml transition --kind leave --id 4 --to paused
//
// Status changes follow the lifecycle tables. Only approved records are
// exported; a paused leave request is excluded until it is approved again.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/paxml-exporter/internal/store"
	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

var (
	transitionKind string
	transitionID   uint
	transitionTo   string
)

var transitionCmd = &cobra.Command{
	Use:   "transition",
	Short: "Change the status of a deviation or leave request",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(transitionCmd)

	transitionCmd.Flags().StringVar(&transitionKind, "kind", "deviation", `Record kind: "deviation" or "leave"`)
	transitionCmd.Flags().UintVar(&transitionID, "id", 0, "Record id")
	transitionCmd.Flags().StringVar(&transitionTo, "to", "", "Target status")
	transitionCmd.MarkFlagRequired("id")
	transitionCmd.MarkFlagRequired("to")
}

func runTransition(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	kind := types.RecordKind(transitionKind)
	if kind != types.KindDeviation && kind != types.KindLeave {
		return fmt.Errorf("unknown kind %q: use deviation or leave", transitionKind)
	}
	to, err := store.CheckStatus(kind, types.Status(transitionTo))
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if kind == types.KindLeave {
		err = a.store.UpdateLeaveStatus(ctx, transitionID, to)
	} else {
		err = a.store.UpdateDeviationStatus(ctx, transitionID, to)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s %d does not exist", kind, transitionID)
	case err != nil:
		return err
	}

	a.logger.WithFields(logrus.Fields{"kind": kind, "id": transitionID, "status": to}).Debug("Transition applied")
	fmt.Printf("%s %d is now %s\n", kind, transitionID, to)
	return nil
}
