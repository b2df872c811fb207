package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/ragged/internal/configloader"
	"github.com/yaklabco/ragged/internal/logging"
	"github.com/yaklabco/ragged/pkg/builder"
	"github.com/yaklabco/ragged/pkg/codec"
	"github.com/yaklabco/ragged/pkg/config"
	"github.com/yaklabco/ragged/pkg/fsutil"
	"github.com/yaklabco/ragged/pkg/layout"
	"github.com/yaklabco/ragged/pkg/reduce"
)

// codecFlags are the decoding settings shared by every command that reads values.
type codecFlags struct {
	nan         string
	inf         string
	negInf      string
	quoted      bool
	skipInvalid bool
}

func (f *codecFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nan, "nan", "", "token standing for not-a-number")
	cmd.Flags().StringVar(&f.inf, "inf", "", "token standing for positive infinity")
	cmd.Flags().StringVar(&f.negInf, "neg-inf", "", "token standing for negative infinity")
	cmd.Flags().BoolVar(&f.quoted, "quoted-sentinels", false, "read and write the tokens as quoted strings")
	cmd.Flags().BoolVar(&f.skipInvalid, "skip-invalid", false, "skip malformed values instead of failing")
}

// apply copies the flags into the CLI layer of the configuration.
func (f *codecFlags) apply(cfg *config.Config) {
	cfg.Codec.NaNString = f.nan
	cfg.Codec.InfinityString = f.inf
	cfg.Codec.NegInfinityString = f.negInf
	cfg.Codec.QuotedSentinels = f.quoted
	cfg.Codec.SkipInvalid = f.skipInvalid
}

// session is the resolved configuration and logger of one command run.
type session struct {
	cmd    *cobra.Command
	cfg    *config.Config
	logger *log.Logger
}

// newSession loads the layered configuration with cli as the top layer.
func newSession(cmd *cobra.Command, cli *config.Config) (*session, error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}
	if color, err := cmd.Flags().GetString("color"); err == nil {
		cli.Color = config.ColorMode(color)
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		ExplicitPath: configPath,
		CLIConfig:    cli,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}
	cfg := result.Config

	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}
	for _, warning := range result.Warnings {
		logger.Warn("configuration", logging.FieldWarning, warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldLoadedFrom, result.LoadedFrom)
	}

	return &session{cmd: cmd, cfg: cfg, logger: logger}, nil
}

func (s *session) builderOptions() builder.Options {
	return builder.Options{Initial: s.cfg.Builder.Initial, Resize: s.cfg.Builder.Resize}
}

func (s *session) codecOptions() codec.Options {
	return codec.Options{
		NaN:             s.cfg.Codec.NaNString,
		Infinity:        s.cfg.Codec.InfinityString,
		NegInfinity:     s.cfg.Codec.NegInfinityString,
		QuotedSentinels: s.cfg.Codec.QuotedSentinels,
		LineDelimited:   s.cfg.Codec.LineDelimited,
		Separator:       s.cfg.Codec.Separator,
		SkipInvalid:     s.cfg.Codec.SkipInvalid,
		Logger:          s.logger,
		Builder:         s.builderOptions(),
	}
}

func (s *session) reduceOptions() reduce.Options {
	return reduce.Options{
		Axis:           s.cfg.Reduce.Axis,
		KeepDims:       s.cfg.Reduce.KeepDims,
		MaskIdentity:   s.cfg.Reduce.MaskIdentity,
		FlattenRecords: s.cfg.Reduce.FlattenRecords,
	}
}

// read decodes the values in path; an empty path or "-" reads stdin.
func (s *session) read(path string) (layout.Node, error) {
	in, err := fsutil.Open(s.cmd.Context(), path, s.cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	defer in.Close()

	if path == "" || path == fsutil.StdioPath {
		path = "stdin"
	}

	node, err := codec.Decode(in, s.codecOptions())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.logger.Debug("decoded input",
		logging.FieldInput, path,
		logging.FieldValues, node.Length(),
		logging.FieldType, node.Form().Type(),
	)
	return node, nil
}

// inputArg returns the optional file argument.
func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// output is the destination of a command: stdout or an atomically
// replaced file.
type output struct {
	io.Writer
	file *fsutil.AtomicFile
}

func (s *session) create(path string) (*output, error) {
	if path == "" || path == fsutil.StdioPath {
		return &output{Writer: s.cmd.OutOrStdout()}, nil
	}
	f, err := fsutil.CreateAtomic(s.cmd.Context(), path, 0)
	if err != nil {
		return nil, err
	}
	return &output{Writer: f, file: f}, nil
}

// finish commits a file output when err is nil and discards it otherwise.
func (o *output) finish(err error) error {
	if o.file == nil {
		return err
	}
	if err != nil {
		o.file.Abort()
		return err
	}
	return o.file.Commit()
}

// encode writes n followed by a newline.
func (s *session) encode(w io.Writer, n layout.Node) error {
	if err := codec.NewEncoder(w, s.codecOptions()).Encode(n); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
