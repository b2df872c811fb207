package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/ragged/internal/ui/pretty"
	"github.com/yaklabco/ragged/pkg/codec"
	"github.com/yaklabco/ragged/pkg/config"
)

// defaultShowLimit is the number of values show prints by default.
const defaultShowLimit = 10

type showFlags struct {
	codec codecFlags
	limit int
}

func newShowCommand() *cobra.Command {
	flags := &showFlags{}

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Preview the type and first values of a stream",
		Long: `Print the inferred type followed by the first values, one per line,
truncated to the terminal width.`,
		Example: `  ragged show data.json
  ragged show --limit 3 --color always data.json | less -R`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, inputArg(args), flags)
		},
	}

	flags.codec.register(cmd)
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", defaultShowLimit, "number of values to print (0 prints all)")

	return cmd
}

func runShow(cmd *cobra.Command, input string, flags *showFlags) error {
	cli := &config.Config{}
	flags.codec.apply(cli)

	s, err := newSession(cmd, cli)
	if err != nil {
		return err
	}

	node, err := s.read(input)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(string(s.cfg.Color), w))
	printer := pretty.NewPrinter(styles, pretty.TerminalWidth(w))

	opts := s.codecOptions()
	opts.LineDelimited = false

	if _, err := fmt.Fprintln(w, printer.Header(node.Length(), node.Form().Type())); err != nil {
		return err
	}

	shown := 0
	for text, err := range codec.Lines(node, opts) {
		if err != nil {
			return err
		}
		if flags.limit > 0 && shown == flags.limit {
			break
		}
		if _, err := fmt.Fprintln(w, printer.Line(shown, text)); err != nil {
			return err
		}
		shown++
	}

	if rest := node.Length() - shown; rest > 0 {
		if _, err := fmt.Fprintln(w, printer.More(rest)); err != nil {
			return err
		}
	}
	return nil
}
