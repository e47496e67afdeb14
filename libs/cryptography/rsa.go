package cryptography

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"encoding/base64"
	"errors"

	errorutils "github.com/agrojardin/checkout/libs/errors"
)

// ErrInvalidSignature is returned when a signature does not match the payload
var ErrInvalidSignature = errors.New("cryptography: invalid signature")

// RSASigner signs payloads with RSASSA-PKCS1-v1_5 over a SHA-512 digest.
// It holds no mutable state and is safe for concurrent use.
type RSASigner struct {
	key *rsa.PrivateKey
}

// NewRSASigner creates a signer for key
func NewRSASigner(key *rsa.PrivateKey) (*RSASigner, error) {
	if key == nil {
		return nil, errorutils.NewKind(errorutils.KindSigning, "no signing key", nil)
	}
	return &RSASigner{key: key}, nil
}

// Sign returns the base64 (standard encoding) signature of the exact payload bytes
func (s *RSASigner) Sign(payload []byte) (string, error) {
	digest := sha512.Sum512(payload)

	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA512, digest[:])
	if err != nil {
		return "", errorutils.NewKind(errorutils.KindSigning, "failed to sign payload", err)
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// Public returns the public half of the signing key
func (s *RSASigner) Public() *rsa.PublicKey {
	return &s.key.PublicKey
}

// VerifyRSASHA512 checks a base64 signature produced by RSASigner.Sign
func VerifyRSASHA512(pub *rsa.PublicKey, payload []byte, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return errorutils.Wrap(err, "signature is not valid base64")
	}

	digest := sha512.Sum512(payload)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA512, digest[:], sig); err != nil {
		return ErrInvalidSignature
	}
	return nil
}
