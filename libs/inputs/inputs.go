package inputs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	errorutils "github.com/agrojardin/checkout/libs/errors"
)

// Decodable - an interface that allows for decoding of inputs
type Decodable interface {
	Decode(context.Context, []byte) error
}

// Validatable - an interface that allows for validation of inputs and params
type Validatable interface {
	Validate(context.Context) error
}

// DecodeValidate - decode and validate for inputs
type DecodeValidate interface {
	Validatable
	Decodable
}

// DecodeJSON - decode json helper, keeping numbers as json.Number
func DecodeJSON(ctx context.Context, input []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	return dec.Decode(v)
}

// DecodeAndValidateReader - perform decode and validate of input in one swipe
func DecodeAndValidateReader(ctx context.Context, v DecodeValidate, input io.Reader) error {
	b, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return DecodeAndValidate(ctx, v, b)
}

// DecodeAndValidate - perform decode and validate of input in one swipe.
// Validation is skipped when decoding fails.
func DecodeAndValidate(ctx context.Context, v DecodeValidate, input []byte) error {
	var me = new(errorutils.MultiError)
	if err := v.Decode(ctx, input); err != nil {
		me.Append(fmt.Errorf("failed decoding: %w", err))
		return me
	}
	if err := v.Validate(ctx); err != nil {
		me.Append(fmt.Errorf("failed validation: %w", err))
	}
	if me.Count() > 0 {
		return me
	}
	return nil
}
