package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/ragged/internal/logging"
	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/codec"
	"github.com/yaklabco/ragged/pkg/config"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
	"github.com/yaklabco/ragged/pkg/reduce"
)

// axisNone on the command line reduces every value to one scalar.
const axisNone = "none"

type reduceFlags struct {
	codec          codecFlags
	op             string
	axis           string
	keepDims       bool
	maskIdentity   bool
	flattenRecords bool
	format         string
}

func newReduceCommand() *cobra.Command {
	flags := &reduceFlags{}

	cmd := &cobra.Command{
		Use:   "reduce [file]",
		Short: "Reduce values along an axis",
		Long: `Fold the values at one nesting level with a reducer.

Axis 0 is the outermost level and negative axes count from the innermost,
so -1 reduces each innermost list. Without an axis every value is folded
into a single scalar. Missing values are skipped; records reduce field by
field.

Reducers: ` + strings.Join(reduce.Names(), ", "),
		Example: `  ragged reduce --op sum --axis -1 data.json
  ragged reduce --op max --axis 0 --keepdims data.json
  ragged reduce --op count data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(cmd, inputArg(args), flags)
		},
	}

	flags.codec.register(cmd)
	cmd.Flags().StringVar(&flags.op, "op", "sum", "reducer name")
	cmd.Flags().StringVar(&flags.axis, "axis", "", "axis to reduce, or none for a scalar (default from config)")
	cmd.Flags().BoolVar(&flags.keepDims, "keepdims", false, "keep the reduced axis with length one")
	cmd.Flags().BoolVar(&flags.maskIdentity, "mask-identity", false, "give null for groups with no values")
	cmd.Flags().BoolVar(&flags.flattenRecords, "flatten-records", false, "fold record fields together without an axis")
	cmd.Flags().StringVar(&flags.format, "format", "", "scalar output format: text, json, yaml")

	return cmd
}

func runReduce(cmd *cobra.Command, input string, flags *reduceFlags) error {
	reducer, ok := reduce.Lookup(flags.op)
	if !ok {
		return errs.Invalid("reduce", fmt.Sprintf("unknown reducer %q; must be one of: %s",
			flags.op, strings.Join(reduce.Names(), ", ")))
	}

	cli := &config.Config{
		Format: config.OutputFormat(flags.format),
		Reduce: config.ReduceConfig{
			KeepDims:       flags.keepDims,
			MaskIdentity:   flags.maskIdentity,
			FlattenRecords: flags.flattenRecords,
		},
	}
	flags.codec.apply(cli)
	if flags.axis != "" && flags.axis != axisNone {
		axis, err := strconv.Atoi(flags.axis)
		if err != nil {
			return errs.Invalid("reduce", fmt.Sprintf("axis %q is not an integer or %s", flags.axis, axisNone))
		}
		cli.Reduce.Axis = &axis
	}

	s, err := newSession(cmd, cli)
	if err != nil {
		return err
	}
	if flags.axis == axisNone {
		s.cfg.Reduce.Axis = nil
	}

	node, err := s.read(input)
	if err != nil {
		return err
	}

	opts := s.reduceOptions()
	s.logger.Debug("reducing", logging.FieldReducer, reducer.Name, logging.FieldAxis, describeAxis(opts.Axis))

	result, err := reduce.Reduce(node, reducer, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", reducer.Name, err)
	}

	if result.IsScalar() {
		return writeScalar(cmd.OutOrStdout(), result.Value, s.cfg.Format, s.codecOptions())
	}
	return s.encode(cmd.OutOrStdout(), result.Node)
}

func describeAxis(axis *int) string {
	if axis == nil {
		return axisNone
	}
	return strconv.Itoa(*axis)
}

// writeScalar prints a fully reduced value. Numbers use the codec's
// formatting so reals keep their fraction and non-finite values their token.
func writeScalar(w io.Writer, v any, format config.OutputFormat, opts codec.Options) error {
	if format == config.FormatYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	var leaf *buffer.Buffer
	switch x := v.(type) {
	case int64:
		leaf = buffer.FromInt64s([]int64{x})
	case float64:
		leaf = buffer.FromFloat64s([]float64{x})
	case bool:
		leaf = buffer.FromBools([]bool{x})
	}

	var text []byte
	var err error
	if leaf != nil {
		text, err = codec.AppendValue(nil, layout.MustNumeric(leaf), 0, opts)
	} else {
		text, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", text)
	return err
}
