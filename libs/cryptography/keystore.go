package cryptography

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	errorutils "github.com/agrojardin/checkout/libs/errors"
	"golang.org/x/crypto/ssh"
	"software.sslmate.com/src/go-pkcs12"
)

var pemMarker = []byte("-----BEGIN ")

// LoadRSAPrivateKey reads the keystore at path and returns the rsa private key in it.
// All failures are of kind errorutils.KindKeyLoad.
func LoadRSAPrivateKey(path, secret string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorutils.NewKind(errorutils.KindKeyLoad, "failed to read keystore", err)
	}
	return ParseRSAPrivateKey(data, secret)
}

// ParseRSAPrivateKey extracts an rsa private key from a PKCS#12 (pfx) blob or a pem
// encoded key. Pem keys may be PKCS#1, PKCS#8 or OpenSSH, optionally encrypted with secret.
func ParseRSAPrivateKey(data []byte, secret string) (*rsa.PrivateKey, error) {
	var (
		key interface{}
		err error
	)

	if bytes.Contains(data, pemMarker) {
		key, err = parsePEMKey(data, secret)
	} else {
		key, _, _, err = pkcs12.DecodeChain(data, secret)
	}
	if err != nil {
		return nil, errorutils.NewKind(errorutils.KindKeyLoad, "failed to decode keystore", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errorutils.NewKind(errorutils.KindKeyLoad, fmt.Sprintf("unsupported key type %T", key), nil)
	}

	if err := rsaKey.Validate(); err != nil {
		return nil, errorutils.NewKind(errorutils.KindKeyLoad, "invalid rsa key", err)
	}
	rsaKey.Precompute()

	return rsaKey, nil
}

func parsePEMKey(data []byte, secret string) (interface{}, error) {
	key, err := ssh.ParseRawPrivateKey(data)

	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		if secret == "" {
			return nil, err
		}
		return ssh.ParseRawPrivateKeyWithPassphrase(data, []byte(secret))
	}

	return key, err
}
