package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi"
	chiware "github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rootcmd "github.com/agrojardin/checkout/cmd"
	cmdutils "github.com/agrojardin/checkout/libs/cmd"
	appctx "github.com/agrojardin/checkout/libs/context"
	"github.com/agrojardin/checkout/libs/handlers"
	"github.com/agrojardin/checkout/libs/logging"
	"github.com/agrojardin/checkout/libs/middleware"
)

const (
	timeout = 60 * time.Second

	defaultRateLimitPerMin = 180
)

func init() {
	rootcmd.RootCmd.AddCommand(ServeCmd)

	// address - sets the address of the server to be started
	ServeCmd.PersistentFlags().String("address", ":8080",
		"the default address to bind to")
	cmdutils.Must(viper.BindPFlag("address", ServeCmd.PersistentFlags().Lookup("address")))
	cmdutils.Must(viper.BindEnv("address", "ADDR"))

	ServeCmd.PersistentFlags().String("metrics-address", ":9090",
		"the address prometheus metrics are served on")
	cmdutils.Must(viper.BindPFlag("metrics-address", ServeCmd.PersistentFlags().Lookup("metrics-address")))
	cmdutils.Must(viper.BindEnv("metrics-address", "METRICS_ADDR"))
}

// ServeCmd the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "entrypoint to serve a micro-service",
}

// SetupRouter sets up a router with the common middleware and a health check
func SetupRouter(ctx context.Context, status handlers.StatusFunc) *chi.Mux {
	logger := logging.FromContext(ctx)

	r := chi.NewRouter()
	r.Use(
		chiware.RequestID,
		chiware.RealIP,
		chiware.Heartbeat("/"),
		chiware.Timeout(timeout),
		middleware.RequestIDTransfer)

	if viper.GetString("environment") == "production" {
		rl, ok := ctx.Value(appctx.RateLimitPerMinuteCTXKey).(int)
		if !ok || rl <= 0 {
			rl = defaultRateLimitPerMin
		}
		r.Use(middleware.RateLimiter(ctx, rl))
	}

	version, _ := appctx.GetStringFromContext(ctx, appctx.VersionCTXKey)
	commit, _ := appctx.GetStringFromContext(ctx, appctx.CommitCTXKey)
	buildTime, _ := appctx.GetStringFromContext(ctx, appctx.BuildTimeCTXKey)

	// Also handles panic recovery
	r.Use(
		hlog.NewHandler(*logger),
		hlog.UserAgentHandler("user_agent"),
		hlog.RequestIDHandler("req_id", "Request-Id"),
		middleware.RequestLogger(logger))

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("build_time", buildTime).
		Str("address", viper.GetString("address")).
		Str("environment", viper.GetString("environment")).
		Msg("server starting")

	r.Get("/health-check", handlers.HealthCheckHandler(version, buildTime, commit, status))

	return r
}

// SetupSentry configures error reporting when SENTRY_DSN is set. The returned
// func flushes pending events.
func SetupSentry(ctx context.Context) (func(), error) {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return func() {}, nil
	}

	buildTime, _ := appctx.GetStringFromContext(ctx, appctx.BuildTimeCTXKey)
	commit, _ := appctx.GetStringFromContext(ctx, appctx.CommitCTXKey)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Release:     fmt.Sprintf("checkout@%s-%s", commit, buildTime),
		Environment: viper.GetString("environment"),
	})
	if err != nil {
		return func() {}, err
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}

// ServeMetrics serves prometheus metrics on its own listener
func ServeMetrics(ctx context.Context) {
	logger := logging.Logger(ctx, "cmd.ServeMetrics")

	go func() {
		err := http.ListenAndServe(viper.GetString("metrics-address"), middleware.Metrics())
		if err != nil {
			sentry.CaptureException(err)
			logger.Panic().Err(err).Msg("metrics HTTP server start failed!")
		}
	}()
}
