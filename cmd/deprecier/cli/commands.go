package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/deprecier/client"
	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/deprecation"
	"github.com/git-pkgs/deprecier/internal/rules"
)

func verifyCommand(id Identification) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Validate the policy file and print the resulting rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(cmd, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range s.deprecier.Rules() {
				fmt.Fprintf(out, "%d. %s -> %s\n", r.Index+1, r.String(), r.Action)
			}
			return nil
		},
	}
}

func publishCommand(id Identification) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Fetch the published versions and deprecate those the policy drops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(cmd, id)
			if err != nil {
				return err
			}

			report, err := s.deprecier.Publish(cmd.Context(), deprecation.RunContext{
				Cwd:    s.opts.Cwd,
				Env:    id.env(),
				DryRun: s.opts.DryRun,
			})
			if report != nil {
				printReport(cmd, report)
			}
			var depErr *core.DeprecationError
			if errors.As(err, &depErr) {
				return fmt.Errorf("%w: %v", errDeprecationsFailed, err)
			}
			return err
		},
	}
}

func printReport(cmd *cobra.Command, report *deprecation.Report) {
	out := cmd.OutOrStdout()
	switch {
	case report.Skipped:
		fmt.Fprintln(out, "package is not published, nothing to do")
		return
	case report.DryRun:
		fmt.Fprintf(out, "dry run: %d version(s) would be deprecated\n", len(report.Pending()))
		return
	}
	for _, v := range report.Deprecated {
		if page := report.Links[v][client.LinkRegistry]; page != "" {
			fmt.Fprintf(out, "deprecated %s (%s)\n", v, page)
		} else {
			fmt.Fprintf(out, "deprecated %s\n", v)
		}
	}
	fmt.Fprintf(out, "%s: %d deprecated, %d failed, %d kept\n",
		report.Package.Name, len(report.Deprecated), len(report.Failed),
		rules.Counts(report.Results)[core.Support])
}

func planCommand(id Identification) *cobra.Command {
	return &cobra.Command{
		Use:   "plan VERSION...",
		Short: "Show which action the policy picks for each given version",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd, id)
			if err != nil {
				return err
			}

			results, err := s.deprecier.Plan(args)
			if err != nil {
				return err
			}

			rows := [][]string{}
			for _, r := range results {
				rows = append(rows, []string{r.Version.Original(), string(r.Action), r.Rule.String()})
			}
			renderTable(cmd.OutOrStdout(), []string{"Version", "Action", "Rule"}, rows)
			return nil
		},
	}
}

func rulesCommand(_ Identification) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available rule kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := [][]string{}
			for _, kind := range rules.Kinds() {
				rows = append(rows, []string{string(kind), string(rules.ActionOf(kind))})
			}
			renderTable(cmd.OutOrStdout(), []string{"Rule", "Action"}, rows)
			return nil
		},
	}
}

// renderTable writes a borderless, left-aligned table.
func renderTable(output io.Writer, columns []string, rows [][]string) {
	table := tablewriter.NewWriter(output)
	table.SetHeader(columns)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(rows)
	table.Render()
}
