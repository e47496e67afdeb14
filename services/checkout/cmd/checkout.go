package cmd

import (
	"errors"

	"github.com/asaskevich/govalidator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rootcmd "github.com/agrojardin/checkout/cmd"
	cmdutils "github.com/agrojardin/checkout/libs/cmd"
	"github.com/agrojardin/checkout/libs/ptr"
	"github.com/agrojardin/checkout/services/checkout"
	"github.com/agrojardin/checkout/services/cmd"
)

func init() {
	checkoutCmd.AddCommand(restCmd)
	cmd.ServeCmd.AddCommand(checkoutCmd)
	rootcmd.RootCmd.AddCommand(signCmd)

	def := checkout.DefaultConfig()

	// merchant settings, shared by the server and the offline signer
	cmdutils.NewFlagBuilder(restCmd, signCmd).
		Flag().String("plexo-gateway-url", def.GatewayURL, "the plexo secure payment gateway base url").
		Env("PLEXO_GATEWAY_URL").
		Flag().String("plexo-fingerprint", def.Fingerprint, "fingerprint of the signing certificate registered with plexo").
		Env("PLEXO_FINGERPRINT").
		Flag().String("plexo-client", def.Client, "the plexo client name").
		Env("PLEXO_CLIENT").
		Flag().Int64("plexo-commerce-id", *def.CommerceID, "the plexo commerce id, 0 to omit").
		Env("PLEXO_COMMERCE_ID").
		Flag().Int("plexo-action", def.Action, "the authorization action code").
		Env("PLEXO_ACTION").
		Flag().Int("plexo-authorization-type", def.AuthorizationType, "the authorization type").
		Env("PLEXO_AUTHORIZATION_TYPE").
		Flag().StringSlice("plexo-limit-banks", def.LimitBanks, "banks the buyer may pay with").
		Env("PLEXO_LIMIT_BANKS").
		Flag().StringSlice("plexo-limit-issuers", def.LimitIssuers, "card issuers the buyer may pay with").
		Env("PLEXO_LIMIT_ISSUERS").
		Flag().String("plexo-redirect-uri", *def.RedirectURI, "where plexo sends the buyer after paying, empty to omit").
		Env("PLEXO_REDIRECT_URI").
		Flag().Bool("plexo-do-not-use-callback", def.DoNotUseCallback, "ask plexo not to call back").
		Env("PLEXO_DO_NOT_USE_CALLBACK").
		Flag().Int("plexo-currency-id", def.CurrencyID, "the plexo currency id").
		Env("PLEXO_CURRENCY_ID").
		Flag().Int64("plexo-invoice-number", def.InvoiceNumber, "the financial inclusion invoice number").
		Env("PLEXO_INVOICE_NUMBER").
		Flag().Int("plexo-financial-inclusion-type", def.FinancialInclusionType, "the financial inclusion type").
		Env("PLEXO_FINANCIAL_INCLUSION_TYPE").
		Flag().Int("plexo-installments", def.Installments, "number of installments").
		Env("PLEXO_INSTALLMENTS").
		Flag().String("plexo-shipping-country", def.ShippingCountry, "country of every shipping address").
		Env("PLEXO_SHIPPING_COUNTRY").
		Flag().String("plexo-cvc", def.CVC, "card verification code sent as a non storable item, empty to omit").
		Env("PLEXO_CVC").
		Flag().String("plexo-keystore", "", "path to the pfx or pem file holding the signing key").
		Env("PLEXO_KEYSTORE").
		Flag().String("plexo-keystore-secret", "", "secret unlocking the signing key").
		Env("PLEXO_KEYSTORE_SECRET")

	cmdutils.NewFlagBuilder(restCmd).
		Flag().Duration("gateway-timeout", def.GatewayTimeout, "bound on each gateway call").
		Env("GATEWAY_TIMEOUT").
		Flag().Duration("lookup-timeout", def.LookupTimeout, "bound on each product lookup").
		Env("LOOKUP_TIMEOUT").
		Flag().Duration("product-cache-ttl", defaultProductCacheTTL, "how long product rows are served from memory").
		Env("PRODUCT_CACHE_TTL").
		Flag().String("database-url", "", "the postgres connection url").
		Env("DATABASE_URL").
		Flag().Bool("migrate", true, "run database migrations at startup").
		Env("MIGRATE").
		Flag().Int("rate-limit-per-min", 180, "requests per minute allowed per ip in production").
		Env("RATE_LIMIT_PER_MIN")

	cmdutils.NewFlagBuilder(signCmd).
		Flag().String("payload", "", "path to a json file with the express checkout request object").
		Require()
}

var (
	checkoutCmd = &cobra.Command{
		Use:   "checkout",
		Short: "provides the checkout micro-service entrypoint",
	}

	restCmd = &cobra.Command{
		Use:   "rest",
		Short: "provides REST api services",
		Run:   RestRun,
	}

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "signs an express checkout request offline and prints the envelope",
		Run:   rootcmd.Perform("sign", SignRun),
	}
)

// ConfigFromViper reads the merchant settings of the running command.
func ConfigFromViper() (checkout.Config, error) {
	cfg := checkout.Config{
		GatewayURL:             viper.GetString("plexo-gateway-url"),
		Fingerprint:            viper.GetString("plexo-fingerprint"),
		Client:                 viper.GetString("plexo-client"),
		Action:                 viper.GetInt("plexo-action"),
		AuthorizationType:      viper.GetInt("plexo-authorization-type"),
		LimitBanks:             viper.GetStringSlice("plexo-limit-banks"),
		LimitIssuers:           viper.GetStringSlice("plexo-limit-issuers"),
		RedirectURI:            ptr.FromString(viper.GetString("plexo-redirect-uri")),
		DoNotUseCallback:       viper.GetBool("plexo-do-not-use-callback"),
		CurrencyID:             viper.GetInt("plexo-currency-id"),
		InvoiceNumber:          viper.GetInt64("plexo-invoice-number"),
		FinancialInclusionType: viper.GetInt("plexo-financial-inclusion-type"),
		Installments:           viper.GetInt("plexo-installments"),
		ShippingCountry:        viper.GetString("plexo-shipping-country"),
		CVC:                    viper.GetString("plexo-cvc"),
		GatewayTimeout:         viper.GetDuration("gateway-timeout"),
		LookupTimeout:          viper.GetDuration("lookup-timeout"),
	}

	if id := viper.GetInt64("plexo-commerce-id"); id != 0 {
		cfg.CommerceID = ptr.To(id)
	}

	if err := validateConfig(&cfg); err != nil {
		return checkout.Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg *checkout.Config) error {
	var errs []error

	if !govalidator.IsURL(cfg.GatewayURL) {
		errs = append(errs, errors.New("plexo-gateway-url must be a url"))
	}

	if cfg.Fingerprint == "" {
		errs = append(errs, errors.New("plexo-fingerprint is required"))
	}

	if cfg.Client == "" {
		errs = append(errs, errors.New("plexo-client is required"))
	}

	if cfg.RedirectURI != nil && !govalidator.IsURL(*cfg.RedirectURI) {
		errs = append(errs, errors.New("plexo-redirect-uri must be a url"))
	}

	return errors.Join(errs...)
}
