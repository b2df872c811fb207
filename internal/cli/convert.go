package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/ragged/internal/logging"
	"github.com/yaklabco/ragged/pkg/config"
)

type convertFlags struct {
	codec     codecFlags
	lines     bool
	separator string
	output    string
}

func newConvertCommand() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Decode a value stream and write it back out",
		Long: `Decode a stream of values and encode it again.

Reading builds the columnar layout, so integers mixed with reals are
written as reals and every value of a field shares one type. Non-finite
floats need a token on output; set one with --nan, --inf and --neg-inf.`,
		Example: `  ragged convert data.json
  ragged convert --lines data.json -o data.ndjson
  cat data.json | ragged convert --inf inf --neg-inf -inf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, inputArg(args), flags)
		},
	}

	flags.codec.register(cmd)
	cmd.Flags().BoolVar(&flags.lines, "lines", false, "write one value per line instead of a single list")
	cmd.Flags().StringVar(&flags.separator, "separator", "", "separator between values with --lines")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runConvert(cmd *cobra.Command, input string, flags *convertFlags) error {
	cli := &config.Config{Output: flags.output}
	flags.codec.apply(cli)
	cli.Codec.LineDelimited = flags.lines
	cli.Codec.Separator = flags.separator

	s, err := newSession(cmd, cli)
	if err != nil {
		return err
	}

	node, err := s.read(input)
	if err != nil {
		return err
	}

	out, err := s.create(s.cfg.Output)
	if err != nil {
		return err
	}
	if err := out.finish(s.encode(out, node)); err != nil {
		return err
	}

	if s.cfg.Output != "" {
		s.logger.Info("wrote values",
			logging.FieldOutput, s.cfg.Output,
			logging.FieldValues, node.Length(),
		)
	}
	return nil
}
