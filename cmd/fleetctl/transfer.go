package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import ships from a delimited text file",
	Long: `Import reads a five-column delimited file (id,name,capacity,speed,
fuel_consumption with a header row) and registers every valid row. Rows that
fail validation or collide with existing ids are reported and skipped; rows
already applied are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}

		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := svc.ImportText(context.Background(), string(payload))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d ships\n", report.Applied)
		for _, failure := range report.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d rejected: %s\n", failure.Line, failure.Reason)
		}
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d rows rejected", len(report.Failures))
		}
		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the registry as delimited text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		text, err := svc.ExportText()
		if err != nil {
			return err
		}
		if exportOut == "" || exportOut == "-" {
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		if err := os.WriteFile(exportOut, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(importCmd, exportCmd)
}
