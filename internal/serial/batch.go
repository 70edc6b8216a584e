package serial

import "fmt"

const maxUnit = 999

type BatchRequest struct {
	Year        int // last two digits
	Batch       int
	ProductType int
	ModelCode   string
	StartUnit   int
	EndUnit     int
}

// ID is the YYBB group shared by every serial in the batch.
func (r BatchRequest) ID() string { return fmt.Sprintf("%02d%02d", r.Year, r.Batch) }

// Size is the number of units in [StartUnit, EndUnit].
func (r BatchRequest) Size() int { return r.EndUnit - r.StartUnit + 1 }

type BatchItem struct {
	Unit     int
	Original string
	Public   string
}

type Batch struct {
	Request BatchRequest
	Product Product
	Model   Model
	Items   []BatchItem
}

// GenerateBatch builds one serial per unit in request order.
func GenerateBatch(codec *Codec, cat *Catalog, req BatchRequest) (*Batch, error) {
	if req.Year < 0 || req.Year > 99 {
		return nil, fmt.Errorf("%w: year %d must be two digits", ErrInvalidBatch, req.Year)
	}
	if req.Batch < 0 || req.Batch > 99 {
		return nil, fmt.Errorf("%w: batch number %d must be two digits", ErrInvalidBatch, req.Batch)
	}
	product, ok := cat.Product(req.ProductType)
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownProduct, req.ProductType)
	}
	model, ok := product.Model(req.ModelCode)
	if !ok {
		return nil, fmt.Errorf("%w %s for %s", ErrUnknownModel, req.ModelCode, product.Name)
	}
	if req.StartUnit < 0 || req.EndUnit > maxUnit {
		return nil, fmt.Errorf("%w: units must be between 0 and %d", ErrInvalidBatch, maxUnit)
	}
	if req.StartUnit > req.EndUnit {
		return nil, fmt.Errorf("%w: starting unit must be less than or equal to ending unit", ErrInvalidBatch)
	}

	b := &Batch{Request: req, Product: product, Model: model, Items: make([]BatchItem, 0, req.Size())}
	for unit := req.StartUnit; unit <= req.EndUnit; unit++ {
		original := fmt.Sprintf("%s-%d%s-6%03d", req.ID(), product.Type, model.Code, unit)
		public, err := codec.ToPublic(original)
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, BatchItem{Unit: unit, Original: original, Public: public})
	}
	return b, nil
}
