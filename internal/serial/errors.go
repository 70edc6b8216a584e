package serial

import "errors"

var (
	ErrInvalidSerial  = errors.New("invalid serial format")
	ErrInvalidCode    = errors.New("invalid public code")
	ErrNotSerial      = errors.New("public code does not map to a serial")
	ErrUnknownProduct = errors.New("unknown product type")
	ErrUnknownModel   = errors.New("unknown model")
	ErrInvalidBatch   = errors.New("invalid batch")
	ErrInvalidPrime   = errors.New("invalid codec prime")
	ErrInvalidCatalog = errors.New("invalid catalog")
)
