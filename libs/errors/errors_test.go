package errors_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	errorutils "github.com/agrojardin/checkout/libs/errors"
	testutils "github.com/agrojardin/checkout/libs/test"
)

type customErr struct{}

func (ce *customErr) Error() string {
	return "custom error"
}

func TestMultiErrorUnwrap(t *testing.T) {
	var (
		err1b = errors.New("error 1b")
		err1a = fmt.Errorf("error 1a: %w", err1b)
		err1  = fmt.Errorf("error 1: %w", err1a)
		err2  = errors.New("error 2")
		err3  = &customErr{}
	)
	merr := &errorutils.MultiError{}
	merr.Append(err1, err2, err3)

	var myCustomErr *customErr
	should.True(t, errors.As(merr, &myCustomErr))
	should.ErrorIs(t, merr, err1)
	should.ErrorIs(t, merr, err1a)
	should.ErrorIs(t, merr, err1b)
	should.ErrorIs(t, merr, err2)
	should.Equal(t, 3, merr.Count())
	should.Equal(t, "error 1: error 1a: error 1b; error 2; custom error", merr.Error())
}

func TestErrorBundle_DataToString_DataNil(t *testing.T) {
	err := errorutils.Wrap(errors.New(testutils.RandomString()), testutils.RandomString())
	var actual *errorutils.ErrorBundle
	must.True(t, errors.As(err, &actual))
	should.Equal(t, "no error bundle data", actual.DataToString())
}

func TestErrorBundle_DataToString_MarshallError(t *testing.T) {
	sut := errorutils.New(errors.New(testutils.RandomString()), testutils.RandomString(), func() {})

	var actual *errorutils.ErrorBundle
	must.True(t, errors.As(sut, &actual))
	should.Contains(t, actual.DataToString(), "error retrieving error bundle data")
}

func TestErrorBundle_DataToString(t *testing.T) {
	errorData := testutils.RandomString()
	sut := errorutils.New(errors.New(testutils.RandomString()), testutils.RandomString(), errorData)

	expected, err := json.Marshal(errorData)
	must.NoError(t, err)

	var actual *errorutils.ErrorBundle
	must.True(t, errors.As(sut, &actual))
	should.Equal(t, string(expected), actual.DataToString())
}

func TestKindError(t *testing.T) {
	type tcExpected struct {
		kind    errorutils.Kind
		match   error
		noMatch error
		msg     string
	}

	type testCase struct {
		name  string
		given error
		exp   tcExpected
	}

	cause := errors.New("connection reset")

	tests := []testCase{
		{
			name:  "gateway_with_cause",
			given: errorutils.NewKind(errorutils.KindGateway, "gateway request failed", cause),
			exp: tcExpected{
				kind:    errorutils.KindGateway,
				match:   errorutils.ErrGateway,
				noMatch: errorutils.ErrExpiredPayload,
				msg:     "gateway request failed: connection reset",
			},
		},

		{
			name:  "wrapped_expired",
			given: fmt.Errorf("submit: %w", errorutils.NewKind(errorutils.KindExpiredPayload, "payload expired", nil)),
			exp: tcExpected{
				kind:    errorutils.KindExpiredPayload,
				match:   errorutils.ErrExpiredPayload,
				noMatch: errorutils.ErrGateway,
				msg:     "submit: payload expired",
			},
		},

		{
			name:  "empty_message_uses_kind",
			given: errorutils.NewKind(errorutils.KindSigning, "", nil),
			exp: tcExpected{
				kind:    errorutils.KindSigning,
				match:   errorutils.ErrSigning,
				noMatch: errorutils.ErrKeyLoad,
				msg:     "signing",
			},
		},

		{
			name:  "plain_error",
			given: cause,
			exp: tcExpected{
				kind:    errorutils.KindUnknown,
				noMatch: errorutils.ErrValidation,
				msg:     "connection reset",
			},
		},
	}

	for i := range tests {
		tc := tests[i]

		t.Run(tc.name, func(t *testing.T) {
			should.Equal(t, tc.exp.kind, errorutils.KindOf(tc.given))
			should.Equal(t, tc.exp.msg, tc.given.Error())

			if tc.exp.match != nil {
				should.ErrorIs(t, tc.given, tc.exp.match)
			}

			should.NotErrorIs(t, tc.given, tc.exp.noMatch)
		})
	}
}

func TestKindError_KeepsCauseAndData(t *testing.T) {
	cause := errors.New("boom")
	err := errorutils.NewKindWithData(errorutils.KindUpstreamData, "lookup failed", cause, []int64{1, 2})

	should.ErrorIs(t, err, cause)

	var ke *errorutils.KindError
	must.True(t, errors.As(err, &ke))
	should.Equal(t, "lookup failed", ke.Message())
	should.Equal(t, []int64{1, 2}, ke.Data())
}
