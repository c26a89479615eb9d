package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fleetcore/internal/core"
	"fleetcore/pkg/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered ships in insertion order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		rows := svc.Table()
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no ships registered")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCAPACITY (TEU)\tSPEED (KN)\tFUEL (L/H)")
		var totalCapacity, speedSum, fuelSum float64
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\n", row.ID, row.Name, row.CapacityTEU, row.SpeedKnots, row.FuelLitersPerHour)
			totalCapacity += row.CapacityTEU
			speedSum += row.SpeedKnots
			fuelSum += row.FuelLitersPerHour
		}
		if err := w.Flush(); err != nil {
			return err
		}
		n := float64(len(rows))
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d ships, %g TEU total, %.1f kn mean speed, %.1f L/h mean fuel\n",
			len(rows), totalCapacity, speedSum/n, fuelSum/n)
		return nil
	},
}

var (
	addID       string
	addName     string
	addCapacity float64
	addSpeed    float64
	addFuel     float64
	addClass    string
	addStatus   string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new ship",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		ship, _, err := svc.AddShip(context.Background(), core.ShipInput{
			ID:                addID,
			Name:              addName,
			CapacityTEU:       addCapacity,
			SpeedKnots:        addSpeed,
			FuelLitersPerHour: addFuel,
			Class:             core.ShipClass(addClass),
			Status:            core.ShipStatus(addStatus),
		})
		if err != nil {
			var dup domain.DuplicateIDError
			if errors.As(err, &dup) {
				return fmt.Errorf("ship %s is already registered", dup.ID)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", ship.ID, ship.Name)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample fleet and ports into an empty registry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		ships, ports, _, err := svc.LoadSampleRegistry(context.Background())
		if err != nil {
			var dup domain.DuplicateIDError
			if errors.As(err, &dup) {
				return fmt.Errorf("registry already contains %s; seed aborted, nothing was changed", dup.ID)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d sample ships and %d sample ports\n", ships, ports)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a ship from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		if _, err := svc.RemoveShip(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "ship identifier (required)")
	addCmd.Flags().StringVar(&addName, "name", "", "display name (required)")
	addCmd.Flags().Float64Var(&addCapacity, "capacity", 0, "capacity in TEU")
	addCmd.Flags().Float64Var(&addSpeed, "speed", 0, "speed in knots")
	addCmd.Flags().Float64Var(&addFuel, "fuel", 0, "fuel consumption in liters per hour")
	addCmd.Flags().StringVar(&addClass, "class", "", "ship class: container|bulk|tanker")
	addCmd.Flags().StringVar(&addStatus, "status", "", "operational status")
	if err := addCmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}
	if err := addCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(listCmd, addCmd, seedCmd, removeCmd)
}
