package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrojardin/checkout/libs/clients/plexo"
	cmdutils "github.com/agrojardin/checkout/libs/cmd"
	"github.com/agrojardin/checkout/libs/cryptography"
	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/logging"
	"github.com/agrojardin/checkout/services/checkout"
)

// SignRun signs the express checkout request object read from --payload and
// writes the envelope body to stdout. Nothing is sent to the gateway.
func SignRun(command *cobra.Command, args []string) error {
	if err := cmdutils.BindFlags(command); err != nil {
		return err
	}

	object, err := os.ReadFile(viper.GetString("payload"))
	if err != nil {
		return errorutils.NewKind(errorutils.KindValidation, "failed to read payload file", err)
	}

	key, err := cryptography.LoadRSAPrivateKey(viper.GetString("plexo-keystore"), viper.GetString("plexo-keystore-secret"))
	if err != nil {
		return err
	}

	signer, err := cryptography.NewRSASigner(key)
	if err != nil {
		return err
	}

	env, err := signObject(object, viper.GetString("plexo-fingerprint"), signer, time.Now())
	if err != nil {
		return err
	}

	logging.Logger(command.Context(), "cmd.SignRun").Info().
		Time("expires_at", env.ExpiresAt()).
		Msg("envelope signed")

	return writeEnvelope(command.OutOrStdout(), env)
}

func signObject(object []byte, fingerprint string, signer *cryptography.RSASigner, now time.Time) (*plexo.SignedEnvelope, error) {
	var req plexo.ExpressCheckoutRequest

	dec := json.NewDecoder(bytes.NewReader(object))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, errorutils.NewKind(errorutils.KindValidation, "payload is not an express checkout request", err)
	}

	payload := plexo.Payload{
		Fingerprint:           fingerprint,
		Object:                req,
		UTCUnixTimeExpiration: now.Add(checkout.PayloadValidity).UnixMilli(),
	}

	env, err := plexo.Seal(&payload, signer)
	if err != nil {
		return nil, err
	}

	if err := cryptography.VerifyRSASHA512(signer.Public(), env.Object(), env.Signature()); err != nil {
		return nil, errorutils.NewKind(errorutils.KindSigning, "signature does not verify", err)
	}

	return env, nil
}

func writeEnvelope(w io.Writer, env *plexo.SignedEnvelope) error {
	_, err := fmt.Fprintln(w, string(env.Body()))
	return err
}
