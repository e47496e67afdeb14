package cmd

import (
	"context"
	"net/http"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrojardin/checkout/libs/clients/plexo"
	cmdutils "github.com/agrojardin/checkout/libs/cmd"
	appctx "github.com/agrojardin/checkout/libs/context"
	"github.com/agrojardin/checkout/libs/cryptography"
	"github.com/agrojardin/checkout/libs/datastore"
	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/services/checkout"
	"github.com/agrojardin/checkout/services/checkout/handler"
	"github.com/agrojardin/checkout/services/checkout/storage/migrations"
	"github.com/agrojardin/checkout/services/checkout/storage/repository"
	"github.com/agrojardin/checkout/services/cmd"
)

const defaultProductCacheTTL = time.Minute

// RestRun - Main entrypoint of the REST subcommand
// This function takes a cobra command and starts up the
// checkout rest microservice.
func RestRun(command *cobra.Command, args []string) {
	ctx := command.Context()
	logger, err := appctx.GetLogger(ctx)
	cmdutils.Must(err)
	cmdutils.Must(cmdutils.BindFlags(command))

	flush, err := cmd.SetupSentry(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize sentry")
	}
	// make sure exceptions go to sentry
	defer flush()

	cfg, err := ConfigFromViper()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid merchant configuration")
	}

	key, err := cryptography.LoadRSAPrivateKey(viper.GetString("plexo-keystore"), viper.GetString("plexo-keystore-secret"))
	if err != nil {
		logger.Fatal().Err(err).Str("kind", string(errorutils.KindOf(err))).Msg("failed to load signing key")
	}

	signer, err := cryptography.NewRSASigner(key)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create signer")
	}

	pg, err := datastore.NewPostgres(viper.GetString("database-url"), "checkout")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	if viper.GetBool("migrate") {
		if err := pg.Migrate(ctx, migrations.FS, migrations.Version); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	gw, err := plexo.New(cfg.GatewayURL, plexo.WithTimeout(cfg.GatewayTimeout))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create gateway client")
	}

	products := repository.NewPromProduct(
		"checkout",
		repository.NewCachedProduct(repository.NewProduct(), viper.GetDuration("product-cache-ttl")),
	)

	svc := checkout.NewService(&cfg, pg.RawDB(), products, signer, plexo.NewInstrumentedClient("plexo", gw))

	ctx = context.WithValue(ctx, appctx.RateLimitPerMinuteCTXKey, viper.GetInt("rate-limit-per-min"))

	// do rest endpoints
	r := cmd.SetupRouter(ctx, pg.Status)
	r.Mount("/v1/checkout", handler.Router(handler.NewCheckout(svc)))

	cmd.ServeMetrics(ctx)

	logger.Info().
		Str("gateway", cfg.GatewayURL).
		Str("client", cfg.Client).
		Msg("checkout service configured")

	// setup server, and run
	srv := http.Server{
		Addr:         viper.GetString("address"),
		Handler:      chi.ServerBaseContext(ctx, r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.GatewayTimeout + cfg.LookupTimeout + 5*time.Second,
	}

	if err = srv.ListenAndServe(); err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("HTTP server start failed!")
	}
}
