// main - main entry-point to the checkout commands through cobra
// individual commands are outlined in ./cmd/ and ./services/*/cmd/
package main

import (
	"github.com/agrojardin/checkout/cmd"
	"github.com/agrojardin/checkout/libs/logging"

	// pull in checkout service, setup code is in init
	_ "github.com/agrojardin/checkout/services/checkout/cmd"
)

var (
	// variables will be overwritten at build time
	version   string
	commit    string
	buildTime string
)

func main() {
	defer func() {
		if logging.Writer != nil {
			logging.Writer.Close()
		}
	}()
	cmd.Execute(version, commit, buildTime)
}
