package requestutils

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func TestReadWithLimit(t *testing.T) {
	body := &trackingCloser{Reader: strings.NewReader("0123456789")}

	b, err := ReadWithLimit(context.Background(), body, 10)
	must.NoError(t, err)
	should.Equal(t, "0123456789", string(b))
	should.True(t, body.closed)

	_, err = ReadWithLimit(context.Background(), strings.NewReader("0123456789"), 9)
	should.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestReadJSON(t *testing.T) {
	var v struct {
		IDs []int64 `json:"productIds"`
	}

	err := ReadJSON(context.Background(), strings.NewReader(`{"productIds":[1,2]}`), &v)
	must.NoError(t, err)
	should.Equal(t, []int64{1, 2}, v.IDs)

	err = ReadJSON(context.Background(), strings.NewReader(`{"productIds":`), &v)
	should.Error(t, err)

	err = ReadJSON(context.Background(), nil, &v)
	should.Error(t, err)
}

func TestSetRequestID(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://localhost", nil)
	must.NoError(t, err)

	SetRequestID(context.Background(), req)
	should.Empty(t, req.Header.Get(RequestIDHeaderKey))

	ctx := context.WithValue(context.Background(), RequestID, "abc")
	SetRequestID(ctx, req)
	should.Equal(t, "abc", req.Header.Get(RequestIDHeaderKey))
}
