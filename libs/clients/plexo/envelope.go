package plexo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/jsonutils"
)

var envelopesSealed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "plexo_envelopes_sealed_total",
	Help: "count of payloads encoded and signed for the gateway",
}, []string{"result"})

// Signer signs the exact bytes given.
type Signer interface {
	Sign(payload []byte) (string, error)
}

// SignedEnvelope holds the signed text of a payload and its signature.
// The text is kept byte for byte as signed.
type SignedEnvelope struct {
	object    []byte
	signature string
	expiresAt time.Time
}

// Encode returns the text of payload that is signed: canonical json with
// integral amounts written with one decimal place.
func Encode(payload *Payload) ([]byte, error) {
	text, err := jsonutils.MarshalCanonical(payload)
	if err != nil {
		return nil, errorutils.NewKind(errorutils.KindSigning, "failed to encode payload", err)
	}

	return FormatAmounts(text), nil
}

// Seal encodes and signs payload.
func Seal(payload *Payload, signer Signer) (env *SignedEnvelope, err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		envelopesSealed.WithLabelValues(result).Inc()
	}()

	if signer == nil {
		return nil, errorutils.NewKind(errorutils.KindSigning, "failed to sign payload", ErrNoSigner)
	}

	object, err := Encode(payload)
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(object)
	if err != nil {
		if errorutils.KindOf(err) == errorutils.KindSigning {
			return nil, err
		}
		return nil, errorutils.NewKind(errorutils.KindSigning, "failed to sign payload", err)
	}

	return &SignedEnvelope{
		object:    object,
		signature: sig,
		expiresAt: payload.ExpiresAt(),
	}, nil
}

// Object returns a copy of the signed text.
func (e *SignedEnvelope) Object() []byte {
	out := make([]byte, len(e.object))
	copy(out, e.object)
	return out
}

func (e *SignedEnvelope) Signature() string {
	return e.signature
}

func (e *SignedEnvelope) ExpiresAt() time.Time {
	return e.expiresAt
}

// Body is the request document sent to the gateway. The signed text is
// spliced in verbatim so the bytes the gateway verifies are the bytes signed.
func (e *SignedEnvelope) Body() []byte {
	const (
		head = `{"Object":`
		mid  = `,"Signature":"`
		tail = `"}`
	)

	out := make([]byte, 0, len(head)+len(e.object)+len(mid)+len(e.signature)+len(tail))
	out = append(out, head...)
	out = append(out, e.object...)
	out = append(out, mid...)
	out = append(out, e.signature...)
	out = append(out, tail...)

	return out
}
