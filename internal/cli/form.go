package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/ragged/pkg/config"
	"github.com/yaklabco/ragged/pkg/layout"
)

type formFlags struct {
	codec  codecFlags
	format string
}

func newFormCommand() *cobra.Command {
	flags := &formFlags{}

	cmd := &cobra.Command{
		Use:   "form [file]",
		Short: "Print the inferred layout of a value stream",
		Long: `Print the schema the values decode to.

The text format is a type string such as "3 * var * {x: float64}". The
json and yaml formats print the full layout tree: node classes, primitive
types, field names and parameters.`,
		Example: `  ragged form data.json
  ragged form --format yaml data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd, inputArg(args), flags)
		},
	}

	flags.codec.register(cmd)
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: text, json, yaml")

	return cmd
}

func runForm(cmd *cobra.Command, input string, flags *formFlags) error {
	cli := &config.Config{Format: config.OutputFormat(flags.format)}
	flags.codec.apply(cli)

	s, err := newSession(cmd, cli)
	if err != nil {
		return err
	}

	node, err := s.read(input)
	if err != nil {
		return err
	}
	return writeForm(cmd.OutOrStdout(), node, s.cfg.Format)
}

// writeForm prints the layout of n in the given format.
func writeForm(w io.Writer, n layout.Node, format config.OutputFormat) error {
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(n.Form(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal form: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case config.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(n.Form()); err != nil {
			return fmt.Errorf("encode form: %w", err)
		}
		return encoder.Close()
	default:
		_, err := fmt.Fprintln(w, layout.TypeOf(n))
		return err
	}
}
