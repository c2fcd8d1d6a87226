package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edp1096/opspice/pkg/circuit"
	"github.com/edp1096/opspice/pkg/netlist"
	"github.com/edp1096/opspice/pkg/report"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// NewOpCmd creates the op command.
func NewOpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "op <netlist>...",
		Short: "Print the operating point of one or more netlists",
		Long: `Solve each netlist and print its node voltages and branch currents.
Several netlists are solved concurrently; "-" reads a netlist from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runOpCmd,
	}

	cmd.Flags().StringP("format", "f", report.FormatText, "Output format (text, json or markdown)")
	cmd.Flags().Int("concurrency", 4, "Number of netlists solved at once")
	cmd.Flags().Bool("print-system", false, "Print the assembled MNA equations before solving")

	return cmd
}

func runOpCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, sim, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	printSystem, err := cmd.Flags().GetBool("print-system")
	if err != nil {
		return err
	}

	texts := make([]string, len(args))
	for i, path := range args {
		if texts[i], err = readNetlist(cmd, path); err != nil {
			return err
		}
	}

	if printSystem {
		for i, text := range texts {
			if err := printEquations(cmd, args[i], text, cfg.Gmin, cfg.FirstLineTitle); err != nil {
				logger.Debug("cannot print system", zap.String("netlist", args[i]), zap.Error(err))
			}
		}
	}

	results, err := sim.SolveAll(cmd.Context(), texts)
	if err != nil {
		return err
	}

	reports := make([]*report.Report, len(results))
	failed := 0
	for i, res := range results {
		source := args[i]
		if len(args) == 1 {
			source = ""
		}
		if res.Err != nil {
			failed++
			reports[i] = report.NewFailed(args[i], string(spiceerr.KindOf(res.Err)), reason(res.Err), spiceerr.LineOf(res.Err))
			continue
		}
		reports[i] = report.New(source, res.Solution)
	}

	writer, err := report.NewWriter(cfg.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if _, err := writer.Write(reports...); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d netlists failed", failed, len(results))
	}
	return nil
}

// printEquations writes the MNA system of text, node rows first.
func printEquations(cmd *cobra.Command, name, text string, gmin float64, firstLineTitle bool) error {
	nl, err := netlist.ParseWithOptions(text, netlist.Options{FirstLineTitle: firstLineTitle})
	if err != nil {
		return err
	}
	g, err := circuit.Build(nl)
	if err != nil {
		return err
	}
	sys, err := circuit.Assemble(g, circuit.Options{Gmin: gmin})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "== %s ==\n", name)
	for idx, node := range g.NodeNames() {
		fmt.Fprintf(out, "x%d = V(%s)\n", circuit.Row(idx), node)
	}
	for b, comp := range g.BranchNames() {
		fmt.Fprintf(out, "x%d = I(%s)\n", g.BranchRow(b), comp)
	}
	sys.Print(out)
	fmt.Fprintln(out)
	return nil
}

// reason strips the line prefix that the report prints separately.
func reason(err error) string {
	var e *spiceerr.Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}
