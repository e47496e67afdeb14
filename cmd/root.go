package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrojardin/checkout/libs/clients"
	cmdutils "github.com/agrojardin/checkout/libs/cmd"
	appctx "github.com/agrojardin/checkout/libs/context"
	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/logging"
)

var (
	// RootCmd is the base command (what the binary is called)
	RootCmd = &cobra.Command{
		Use:   "checkout",
		Short: "checkout signs and submits Plexo express checkout requests",
	}
	ctx = context.Background()
)

// Execute - the main entrypoint for all subcommands
func Execute(version, commit, buildTime string) {
	// setup context with logging, but first we need to setup the environment
	var logger *zerolog.Logger
	ctx = context.WithValue(ctx, appctx.EnvironmentCTXKey, viper.GetString("environment"))
	ctx = context.WithValue(ctx, appctx.DebugLoggingCTXKey, viper.GetBool("debug"))
	ctx, logger = logging.SetupLogger(ctx)

	ctx = context.WithValue(ctx, appctx.VersionCTXKey, version)
	ctx = context.WithValue(ctx, appctx.CommitCTXKey, commit)
	ctx = context.WithValue(ctx, appctx.BuildTimeCTXKey, buildTime)

	// execute the root cmd
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("./checkout command encountered an error")
		os.Exit(1)
	}
}

func init() {
	// env - defaults to local
	RootCmd.PersistentFlags().String("environment", "local",
		"the default environment")
	cmdutils.Must(viper.BindPFlag("environment", RootCmd.PersistentFlags().Lookup("environment")))
	cmdutils.Must(viper.BindEnv("environment", "ENV"))

	// debug logging - defaults to off
	RootCmd.PersistentFlags().Bool("debug", false, "turn on debug logging")
	cmdutils.Must(viper.BindPFlag("debug", RootCmd.PersistentFlags().Lookup("debug")))
	cmdutils.Must(viper.BindEnv("debug", "DEBUG"))

	RootCmd.AddCommand(VersionCmd)
}

// VersionCmd is the command to get the code's version information
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "get the version of this binary",
	Run:   versionRun,
}

func versionRun(command *cobra.Command, args []string) {
	version, _ := appctx.GetStringFromContext(command.Context(), appctx.VersionCTXKey)
	commit, _ := appctx.GetStringFromContext(command.Context(), appctx.CommitCTXKey)
	buildTime, _ := appctx.GetStringFromContext(command.Context(), appctx.BuildTimeCTXKey)
	fmt.Printf("version: %s\ncommit: %s\nbuild time: %s\n",
		version, commit, buildTime,
	)
}

// Perform performs a run
func Perform(action string, fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		err := fn(cmd, args)
		if err != nil {
			logger, lerr := appctx.GetLogger(cmd.Context())
			if lerr != nil {
				_, logger = logging.SetupLogger(cmd.Context())
			}

			log := logger.Err(err).
				Str("action", action).
				Str("kind", string(errorutils.KindOf(err)))
			if state, ok := clients.HTTPStateOf(err); ok {
				log = log.Int("status", state.Status).
					Str("path", state.Path).
					Interface("data", state.Body)
			}
			log.Msg("failed")
		}
		<-time.After(10 * time.Millisecond)
		if err != nil {
			os.Exit(1)
		}
	}
}
