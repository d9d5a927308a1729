package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bookledger/lendingledger/config"
)

const (
	formatText = "text"
	formatJSON = "json"

	logAttrError   = "error"
	logAttrCommand = "command"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{formatText, formatJSON}

// RootOptions holds global flags for all commands, and the configuration loaded from them.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"

	config config.Config
	logger *slog.Logger // nil until the configuration is loaded
}

// NewRootCommand creates the root command for the lendingledger CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lendingledger",
		Short: "Lending desk of a small library",
		Long: "lendingledger checks books out, reserves, dereserves and returns them,\n" +
			"recording every transaction in an append-only ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flag",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading configuration failed", err)
			}

			opts.config = cfg
			opts.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())

			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (json|text)")

	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewLoanedCommand(opts))
	cmd.AddCommand(NewReservedCommand(opts))
	cmd.AddCommand(NewOpenCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewReserveCommand(opts))
	cmd.AddCommand(NewDereserveCommand(opts))
	cmd.AddCommand(NewReturnCommand(opts))
	cmd.AddCommand(NewBooksCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd, opts
}

// Execute runs the CLI with args and returns the process exit code.
// Failures are logged to stderr with the configured logger.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	executed, err := cmd.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}

	logger := opts.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	name := cmd.Name()
	if executed != nil {
		name = executed.Name()
	}

	logger.Error("command failed", logAttrCommand, name, logAttrError, err.Error())

	return GetExitCode(err)
}

func (o *RootOptions) printer(cmd *cobra.Command) printer {
	return printer{format: o.Format, w: cmd.OutOrStdout()}
}

// parseBookIDs converts positional arguments into book ids.
func parseBookIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))

	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid argument",
				fmt.Errorf("book id %q is not a number", arg))
		}

		ids = append(ids, id)
	}

	return ids, nil
}
