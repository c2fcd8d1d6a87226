package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edp1096/opspice/internal/consts"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <netlist> <target>",
		Short: "Print one node voltage, voltage drop or current",
		Long: `Solve the netlist and answer a single query. The target is a node name,
"<component> voltage drop", "<component> current", "<component> power",
V(node), V(a,b) or I(component).

Example:

  spice query divider.cir "R1 voltage drop"`,
		Args: cobra.ExactArgs(2),
		RunE: runQueryCmd,
	}

	cmd.Flags().IntP("precision", "p", consts.DefaultPrecision, "Decimal places in the answer")
	cmd.Flags().BoolP("sentence", "s", false, "Answer with a full sentence")

	return cmd
}

func runQueryCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, sim, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sentence, err := cmd.Flags().GetBool("sentence")
	if err != nil {
		return err
	}

	text, err := readNetlist(cmd, args[0])
	if err != nil {
		return err
	}

	answer, err := sim.Answer(cmd.Context(), text, args[1])
	if err != nil {
		return fmt.Errorf("%s: %w", spiceerr.KindOf(err), err)
	}

	if sentence {
		fmt.Fprintln(cmd.OutOrStdout(), answer.Sentence(cfg.Precision))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), answer.Format(cfg.Precision))
	}
	return nil
}
