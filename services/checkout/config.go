package checkout

import (
	"time"

	"github.com/agrojardin/checkout/libs/clients/plexo"
	"github.com/agrojardin/checkout/libs/ptr"
)

// Config is the merchant integration and runtime settings of the service.
// It is built once at startup and not modified afterwards.
type Config struct {
	GatewayURL             string
	Fingerprint            string
	Client                 string
	CommerceID             *int64
	Action                 int
	AuthorizationType      int
	LimitBanks             []string
	LimitIssuers           []string
	RedirectURI            *string
	DoNotUseCallback       bool
	CurrencyID             int
	InvoiceNumber          int64
	FinancialInclusionType int
	Installments           int
	ShippingCountry        string
	CVC                    string

	GatewayTimeout time.Duration
	LookupTimeout  time.Duration
}

// DefaultConfig returns the settings of the Plexo test integration.
func DefaultConfig() Config {
	return Config{
		GatewayURL:             plexo.DefaultGatewayURL,
		Fingerprint:            "579F4609DD4315D890921F47293B0E7CAC6CB290",
		Client:                 "AgrojardinTest",
		CommerceID:             ptr.To[int64](12285),
		Action:                 64,
		LimitBanks:             []string{"113", "137"},
		LimitIssuers:           []string{"4", "11"},
		RedirectURI:            ptr.FromString("http://localhost/miURL"),
		DoNotUseCallback:       true,
		CurrencyID:             2,
		InvoiceNumber:          -1390098693,
		FinancialInclusionType: 1,
		Installments:           1,
		ShippingCountry:        "UY",
		GatewayTimeout:         30 * time.Second,
		LookupTimeout:          5 * time.Second,
	}
}
