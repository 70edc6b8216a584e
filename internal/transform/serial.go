package transform

import (
	"context"

	"serialx/internal/serial"
)

type encoder struct {
	codec *serial.Codec
	cat   *serial.Catalog
}

func (e *encoder) Name() string { return "encode" }

// Transform validates against the catalog before encoding so unknown
// products never get a public code.
func (e *encoder) Transform(_ context.Context, input string) (Result, error) {
	d, err := e.cat.Parse(input)
	if err != nil {
		return Result{}, err
	}
	public, err := e.codec.ToPublic(input)
	if err != nil {
		return Result{}, err
	}
	return Result{Op: e.Name(), Input: input, Output: public, Original: input, Public: public, Details: d}, nil
}

func (e *encoder) Reverse(_ context.Context, res Result) (string, error) {
	return e.codec.ToOriginal(res.Output)
}

type decoder struct {
	codec *serial.Codec
	cat   *serial.Catalog
}

func (d *decoder) Name() string { return "decode" }

func (d *decoder) Transform(_ context.Context, input string) (Result, error) {
	original, err := d.codec.ToOriginal(input)
	if err != nil {
		return Result{}, err
	}
	det, err := d.cat.Parse(original)
	if err != nil {
		return Result{}, err
	}
	return Result{Op: d.Name(), Input: input, Output: original, Original: original, Public: input, Details: det}, nil
}

func (d *decoder) Reverse(_ context.Context, res Result) (string, error) {
	return d.codec.ToPublic(res.Output)
}

func init() {
	Register("encode", func(c *serial.Codec, cat *serial.Catalog) Transformer { return &encoder{codec: c, cat: cat} })
	Register("decode", func(c *serial.Codec, cat *serial.Catalog) Transformer { return &decoder{codec: c, cat: cat} })
}
