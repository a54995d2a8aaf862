package domain

import (
	"encoding/json"
	"fmt"
)

// PricingDocument is the wire and storage shape of a TicketPricing.
type PricingDocument struct {
	Type              PricingType        `json:"type"`
	Price             *Money             `json:"price,omitempty"`
	AdultPrice        *Money             `json:"adult_price,omitempty"`
	ChildPrice        *Money             `json:"child_price,omitempty"`
	ChildAgeThreshold int                `json:"child_age_threshold,omitempty"`
	Currency          Currency           `json:"currency,omitempty"`
	Tiers             []GroupPricingTier `json:"tiers,omitempty"`
}

func DocumentFor(pricing TicketPricing) *PricingDocument {
	switch p := pricing.(type) {
	case SinglePrice:
		price := p.price
		return &PricingDocument{Type: PricingSingle, Price: &price}
	case DualPrice:
		adult, child := p.adult, p.child
		return &PricingDocument{
			Type:              PricingDual,
			AdultPrice:        &adult,
			ChildPrice:        &child,
			ChildAgeThreshold: p.threshold,
		}
	case GroupTiered:
		return &PricingDocument{Type: PricingGroupTiered, Currency: p.currency, Tiers: p.Tiers()}
	}
	return nil
}

// Pricing rebuilds the pricing through its validating constructor, so
// decoded amounts get the same checks as ones built in code.
func (d *PricingDocument) Pricing() (TicketPricing, error) {
	var (
		pricing TicketPricing
		err     error
	)
	switch d.Type {
	case PricingSingle:
		if d.Price == nil {
			return nil, validationError("Single price is required")
		}
		pricing, err = NewSinglePrice(*d.Price)
	case PricingDual:
		if d.AdultPrice == nil || d.ChildPrice == nil {
			return nil, validationError("Adult and child prices are required for dual pricing")
		}
		pricing, err = NewDualPrice(*d.AdultPrice, *d.ChildPrice, d.ChildAgeThreshold)
	case PricingGroupTiered:
		pricing, err = NewGroupTiered(d.Tiers, d.Currency)
	default:
		return nil, validationErrorf("Unknown pricing type %q", d.Type)
	}
	if err != nil {
		return nil, err
	}
	return pricing, nil
}

// MarshalPricing encodes pricing; a nil pricing encodes as JSON null.
func MarshalPricing(pricing TicketPricing) ([]byte, error) {
	if pricing == nil {
		return []byte("null"), nil
	}
	doc := DocumentFor(pricing)
	if doc == nil {
		return nil, fmt.Errorf("marshal pricing: unsupported type %T", pricing)
	}
	return json.Marshal(doc)
}

func UnmarshalPricing(data []byte) (TicketPricing, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var doc PricingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal pricing: %w", err)
	}
	return doc.Pricing()
}
