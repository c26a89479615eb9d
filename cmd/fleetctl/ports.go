package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Inspect registered ports",
}

var portsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered ports in insertion order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		ports := svc.ListPorts()
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no ports registered")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLAT\tLON\tBERTHS\tFREE\tTEU/H")
		for _, port := range ports {
			free := 0
			for _, berth := range port.Berths {
				if !berth.Occupied {
					free++
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%d\t%d\t%g\n",
				port.ID, port.Name, port.Latitude, port.Longitude,
				len(port.Berths), free, port.TotalHandlingRateTEU())
		}
		return w.Flush()
	},
}

var portsDistanceCmd = &cobra.Command{
	Use:   "distance <from> <to>",
	Short: "Approximate distance between two registered ports",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		km, err := svc.PortDistanceKm(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %.1f km\n", args[0], args[1], km)
		return nil
	},
}

func init() {
	portsCmd.AddCommand(portsListCmd, portsDistanceCmd)
	rootCmd.AddCommand(portsCmd)
}
