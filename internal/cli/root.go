package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/personal-ledger/internal/config"
	"github.com/sheikh-saqib/personal-ledger/internal/events/journal"
	"github.com/sheikh-saqib/personal-ledger/internal/ledger"
	"github.com/sheikh-saqib/personal-ledger/internal/logger"
	"github.com/sheikh-saqib/personal-ledger/internal/models"
	"github.com/sheikh-saqib/personal-ledger/internal/storage/jsonfile"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

// app carries what a single invocation needs; every root command gets its own.
type app struct {
	configFile string
	quarantine bool
	asJSON     bool

	cfg    *config.Config
	log    zerolog.Logger
	ledger *ledger.Ledger
}

// NewRoot creates the ledger command tree
func NewRoot() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "ledger",
		Short:         "Personal ledger of accounts, deposits, withdrawals and transfers",
		Long:          "ledger keeps named accounts with exact balances and their full history in a local JSON file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: a.configFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.LogLevel)
			cmd.SetContext(logger.WithContext(cmd.Context(), a.log))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./ledger.{json,yaml,toml} if present)")
	flags.String("file", "", "ledger file (default \"ledger.json\", env LEDGER_FILE)")
	flags.String("currency", "", "currency code used to display amounts (default \"USD\", env LEDGER_CURRENCY)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default \"warn\", env LEDGER_LOG_LEVEL)")
	flags.BoolVar(&a.quarantine, "quarantine-corrupt", false, "move a corrupt ledger file aside and start with an empty ledger")
	flags.BoolVar(&a.asJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newDepositCmd(a),
		newWithdrawCmd(a),
		newTransferCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// open loads the ledger file. A corrupt file stops the command unless the
// operator asked for it to be quarantined.
func (a *app) open(ctx context.Context, cmd *cobra.Command) error {
	if a.ledger != nil {
		return nil
	}
	log := logger.FromContext(ctx)
	gateway := jsonfile.NewGateway(a.cfg.File)
	opts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithPublisher(journal.NewPublisher(log)),
	}

	lg, err := ledger.Open(ctx, gateway, opts...)
	if errors.Is(err, models.ErrCorruptState) && a.quarantine {
		dest, qerr := gateway.Quarantine(ctx)
		if qerr != nil {
			return qerr
		}
		log.Warn().Str("moved_to", dest).Msg("corrupt ledger quarantined")
		fmt.Fprintf(cmd.ErrOrStderr(), "Corrupt ledger moved to %s; starting with an empty ledger.\n", dest)
		lg, err = ledger.Open(ctx, gateway, opts...)
	}
	if err != nil {
		return err
	}
	a.ledger = lg
	log.Debug().Str("file", gateway.Path()).Msg("ledger opened")
	return nil
}

// Describe turns an error from a command into the message shown to the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, models.ErrCorruptState):
		return fmt.Sprintf("%v\nThe ledger file was left untouched. Inspect or restore it, or rerun with --quarantine-corrupt to move it aside and start empty.", err)
	case errors.Is(err, models.ErrPersistenceFailure):
		return fmt.Sprintf("%v\nThe change was applied in memory only and is not on disk.", err)
	}
	return err.Error()
}
