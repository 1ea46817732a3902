package village

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AffairPayload is the decoded variant of an affair's description.
// GENERAL affairs carry free text; PRODUCT_LISTING affairs embed a
// ProductDraft that is realized as a Product upon approval.
type AffairPayload interface {
	isAffairPayload()
}

// GeneralPayload is the payload of a GENERAL affair: plain text, no structure.
type GeneralPayload struct {
	Note string
}

// ListingPayload is the payload of a PRODUCT_LISTING affair.
type ListingPayload struct {
	Draft ProductDraft
}

func (GeneralPayload) isAffairPayload() {}
func (ListingPayload) isAffairPayload() {}

// ProductDraft is the embedded product description inside a PRODUCT_LISTING
// affair. Price and stock arrive as strings or numbers depending on which
// client serialized the draft, so both forms are accepted.
type ProductDraft struct {
	Name     string     `json:"name"`
	Price    flexString `json:"price"`
	Stock    flexString `json:"stock"`
	Category string     `json:"category"`
	Image    string     `json:"image"`
}

// flexString unmarshals from either a JSON string or a JSON number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// PriceDecimal parses the draft price. Negative prices are rejected.
func (d ProductDraft) PriceDecimal() (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(string(d.Price)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q: %w", d.Price, err)
	}
	if p.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %q is negative", d.Price)
	}
	return p, nil
}

// StockInt parses the draft stock, truncating fractional values the way the
// portal clients historically did. Negative stock is rejected.
func (d ProductDraft) StockInt() (int, error) {
	s := strings.TrimSpace(string(d.Stock))
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("stock %q: %w", d.Stock, ferr)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("stock %q is negative", d.Stock)
	}
	return n, nil
}

// ParseProductDraft decodes and validates a serialized product draft.
func ParseProductDraft(description string) (ProductDraft, error) {
	var d ProductDraft
	if err := json.Unmarshal([]byte(description), &d); err != nil {
		return ProductDraft{}, fmt.Errorf("decode product draft: %w", err)
	}
	if strings.TrimSpace(d.Name) == "" {
		return ProductDraft{}, fmt.Errorf("product draft has no name")
	}
	if _, err := d.PriceDecimal(); err != nil {
		return ProductDraft{}, err
	}
	if _, err := d.StockInt(); err != nil {
		return ProductDraft{}, err
	}
	return d, nil
}

// DecodePayload returns the tagged payload variant for the affair.
func (a *Affair) DecodePayload() (AffairPayload, error) {
	if a.Type == AffairProductListing {
		draft, err := ParseProductDraft(a.Description)
		if err != nil {
			return nil, err
		}
		return ListingPayload{Draft: draft}, nil
	}
	return GeneralPayload{Note: a.Description}, nil
}
