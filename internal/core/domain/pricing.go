package domain

import (
	"sort"
)

type PricingType string

const (
	PricingSingle      PricingType = "SINGLE"
	PricingDual        PricingType = "DUAL"
	PricingGroupTiered PricingType = "GROUP_TIERED"
)

const (
	minChildAgeThreshold = 1
	maxChildAgeThreshold = 18
)

// TicketPricing is one of SinglePrice, DualPrice or GroupTiered.
type TicketPricing interface {
	Type() PricingType
	Currency() Currency
	isTicketPricing()
}

type SinglePrice struct {
	price Money
}

func NewSinglePrice(price Money) (SinglePrice, error) {
	if price.Currency == "" {
		return SinglePrice{}, validationError("Single price is required")
	}
	if err := price.validate(); err != nil {
		return SinglePrice{}, err
	}
	return SinglePrice{price: price}, nil
}

func (p SinglePrice) Price() Money       { return p.price }
func (p SinglePrice) Type() PricingType  { return PricingSingle }
func (p SinglePrice) Currency() Currency { return p.price.Currency }
func (SinglePrice) isTicketPricing()     {}

type DualPrice struct {
	adult     Money
	child     Money
	threshold int
}

func NewDualPrice(adult, child Money, childAgeThreshold int) (DualPrice, error) {
	if adult.Currency == "" {
		return DualPrice{}, validationError("Adult price is required")
	}
	if child.Currency == "" {
		return DualPrice{}, validationError("Child price is required for dual pricing")
	}
	if err := adult.validate(); err != nil {
		return DualPrice{}, err
	}
	if err := child.validate(); err != nil {
		return DualPrice{}, err
	}
	if childAgeThreshold < minChildAgeThreshold || childAgeThreshold > maxChildAgeThreshold {
		return DualPrice{}, validationErrorf("Child age limit must be between %d and %d years", minChildAgeThreshold, maxChildAgeThreshold)
	}
	if adult.Currency != child.Currency {
		return DualPrice{}, validationError("Adult and child prices must use the same currency")
	}
	if child.GreaterThan(adult) {
		return DualPrice{}, validationError("Child price cannot be greater than adult price")
	}
	return DualPrice{adult: adult, child: child, threshold: childAgeThreshold}, nil
}

func (p DualPrice) AdultPrice() Money      { return p.adult }
func (p DualPrice) ChildPrice() Money      { return p.child }
func (p DualPrice) ChildAgeThreshold() int { return p.threshold }
func (p DualPrice) Type() PricingType      { return PricingDual }
func (p DualPrice) Currency() Currency     { return p.adult.Currency }
func (DualPrice) isTicketPricing()         {}

// PriceFor returns the per-head price for a single attendee.
func (p DualPrice) PriceFor(a AttendeeDetails) Money {
	if a.IsChild(p.threshold) {
		return p.child
	}
	return p.adult
}

// GroupPricingTier maps an attendee-count range to a per-head price.
// A nil MaxQuantity means the tier is open-ended.
type GroupPricingTier struct {
	MinQuantity      int   `json:"min_quantity"`
	MaxQuantity      *int  `json:"max_quantity,omitempty"`
	PricePerAttendee Money `json:"price_per_attendee"`
}

func (t GroupPricingTier) Covers(count int) bool {
	if count < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || count <= *t.MaxQuantity
}

type GroupTiered struct {
	tiers    []GroupPricingTier
	currency Currency
}

func NewGroupTiered(tiers []GroupPricingTier, currency Currency) (GroupTiered, error) {
	if !currency.IsValid() {
		return GroupTiered{}, validationErrorf("Unsupported currency %q", currency)
	}
	if len(tiers) == 0 {
		return GroupTiered{}, validationError("At least one tier is required for group pricing")
	}

	sorted := make([]GroupPricingTier, len(tiers))
	for i, t := range tiers {
		if t.PricePerAttendee.Currency != currency {
			return GroupTiered{}, validationError("All tiers must use the same currency")
		}
		if err := t.PricePerAttendee.validate(); err != nil {
			return GroupTiered{}, err
		}
		if t.MinQuantity < 1 {
			return GroupTiered{}, validationError("Tier minimum must be at least 1 attendee")
		}
		if t.MaxQuantity != nil && *t.MaxQuantity < t.MinQuantity {
			return GroupTiered{}, validationErrorf("Tier starting at %d has a maximum below its minimum", t.MinQuantity)
		}
		sorted[i] = copyTier(t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinQuantity < sorted[j].MinQuantity })

	if sorted[0].MinQuantity != 1 {
		return GroupTiered{}, validationError("Group pricing tiers must start at 1 attendee")
	}

	for i := 0; i < len(sorted)-1; i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.MaxQuantity == nil {
			return GroupTiered{}, validationErrorf("Only the last tier can be unlimited. Tier starting at %d must have a maximum.", cur.MinQuantity)
		}
		if next.MinQuantity <= *cur.MaxQuantity {
			return GroupTiered{}, validationErrorf("Tiers cannot overlap: Tier starting at %d overlaps with tier starting at %d", cur.MinQuantity, next.MinQuantity)
		}
		if next.MinQuantity != *cur.MaxQuantity+1 {
			return GroupTiered{}, validationErrorf("Gap detected between tiers: Tier ending at %d and tier starting at %d", *cur.MaxQuantity, next.MinQuantity)
		}
	}

	return GroupTiered{tiers: sorted, currency: currency}, nil
}

// Tiers returns a copy of the tiers ordered by MinQuantity.
func (p GroupTiered) Tiers() []GroupPricingTier {
	out := make([]GroupPricingTier, len(p.tiers))
	for i, t := range p.tiers {
		out[i] = copyTier(t)
	}
	return out
}

func (p GroupTiered) Type() PricingType  { return PricingGroupTiered }
func (p GroupTiered) Currency() Currency { return p.currency }
func (GroupTiered) isTicketPricing()     {}

func (p GroupTiered) TierFor(count int) (GroupPricingTier, error) {
	if count < 1 {
		return GroupPricingTier{}, validationError("Attendee count must be at least 1")
	}
	for _, t := range p.tiers {
		if t.Covers(count) {
			return copyTier(t), nil
		}
	}
	return GroupPricingTier{}, validationErrorf("No tier found for %d attendees", count)
}

func copyTier(t GroupPricingTier) GroupPricingTier {
	if t.MaxQuantity != nil {
		upper := *t.MaxQuantity
		t.MaxQuantity = &upper
	}
	return t
}

// CalculatePrice resolves the total price for attendees under pricing.
// A nil pricing is a free event and costs nothing.
func CalculatePrice(pricing TicketPricing, attendees []AttendeeDetails) (Money, error) {
	if len(attendees) == 0 {
		return Money{}, ErrEmptyAttendeeList
	}

	switch p := pricing.(type) {
	case nil:
		return ZeroMoney(CurrencyUSD), nil
	case SinglePrice:
		return p.price.Multiply(len(attendees))
	case DualPrice:
		total := ZeroMoney(p.Currency())
		for _, a := range attendees {
			var err error
			if total, err = total.Add(p.PriceFor(a)); err != nil {
				return Money{}, err
			}
		}
		return total, nil
	case GroupTiered:
		tier, err := p.TierFor(len(attendees))
		if err != nil {
			return Money{}, err
		}
		return tier.PricePerAttendee.Multiply(len(attendees))
	default:
		return Money{}, &Error{kind: ErrConfiguration, Messages: []string{"unknown ticket pricing type"}}
	}
}
