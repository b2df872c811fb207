package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/ragged/pkg/broadcast"
	"github.com/yaklabco/ragged/pkg/compute"
	"github.com/yaklabco/ragged/pkg/config"
	"github.com/yaklabco/ragged/pkg/errs"
)

type applyFlags struct {
	codec  codecFlags
	output string
}

func newApplyCommand() *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply <operation> <operand>...",
		Short: "Broadcast an elementwise operation across value streams",
		Long: `Apply a numeric operation element by element.

Each operand is a file of values, "-" for stdin, or a number. Operands are
broadcast against each other: scalars repeat everywhere, lists of equal
length pair up, lists of length one repeat, and missing values stay
missing.

Operations: ` + strings.Join(compute.Names(), ", "),
		Example: `  ragged apply add a.json b.json
  ragged apply multiply data.json 2.5
  ragged apply sqrt - < data.json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], args[1:], flags)
		},
	}

	flags.codec.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runApply(cmd *cobra.Command, operation string, operands []string, flags *applyFlags) error {
	if _, err := compute.Default.Kernel(operation); err != nil {
		return err
	}

	cli := &config.Config{Output: flags.output}
	flags.codec.apply(cli)

	s, err := newSession(cmd, cli)
	if err != nil {
		return err
	}

	ins := make([]broadcast.Operand, 0, len(operands))
	arrays := 0
	for _, arg := range operands {
		if operand, ok := scalarOperand(arg); ok {
			ins = append(ins, operand)
			continue
		}
		node, err := s.read(arg)
		if err != nil {
			return err
		}
		ins = append(ins, broadcast.Of(node))
		arrays++
	}
	if arrays == 0 {
		return errs.Invalid("apply", "at least one operand must be a file of values")
	}

	result, err := broadcast.ApplyOp(compute.Default, operation, ins...)
	if err != nil {
		return err
	}

	out, err := s.create(s.cfg.Output)
	if err != nil {
		return err
	}
	if err := out.finish(s.encode(out, result)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// scalarOperand parses a numeric literal; integers stay integers.
func scalarOperand(arg string) (broadcast.Operand, bool) {
	if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return broadcast.Int(i), true
	}
	if x, err := strconv.ParseFloat(arg, 64); err == nil {
		return broadcast.Float(x), true
	}
	return broadcast.Operand{}, false
}
