package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/portfolio/internal/plugins/media"
)

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Inspect and clean the uploads tree",
	}
	cmd.AddCommand(newMediaUnusedCmd(), newMediaCleanCmd())
	return cmd
}

func newMediaUnusedCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "unused",
		Short: "List uploaded files no content record references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			files, err := media.NewScanner(st).FindUnused(cmd.Context())
			if err != nil {
				return err
			}
			report := media.NewUnusedReport(files)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printUnused(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newMediaCleanCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete every uploaded file no content record references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			scanner := media.NewScanner(st)
			files, err := scanner.FindUnused(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				return printUnused(out, media.NewUnusedReport(files))
			}

			paths := make([]string, 0, len(files))
			for _, f := range files {
				paths = append(paths, f.Path)
			}
			result := scanner.DeleteUnused(cmd.Context(), paths)
			for _, p := range result.Deleted {
				fmt.Fprintf(out, "deleted %s\n", p)
			}
			for _, f := range result.Failed {
				fmt.Fprintf(out, "failed  %s: %s\n", f.Path, f.Reason)
			}
			fmt.Fprintf(out, "%d deleted, %d failed\n", len(result.Deleted), len(result.Failed))
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d files could not be deleted", len(result.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be deleted without deleting")
	return cmd
}

func printUnused(w io.Writer, report media.UnusedReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SIZE\tPATH")
	for _, f := range report.Files {
		fmt.Fprintf(tw, "%d\t%s\n", f.Size, f.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d unused files, %d bytes\n", report.Count, report.TotalSize)
	return err
}
