package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory struct {
	ID   uint64
	Name string
	Slug string
}

type Product struct {
	ID uint64

	Title string
	Slug  string

	CategoryID *uint64

	LeadParagraph   string
	ClientName      *string
	ProjectWebsite  *string
	PricingTitle    string
	PricingSubtitle string

	PricingTiers []*PricingTier

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PricingTier struct {
	ID        uint64
	ProductID uint64

	Name        string
	Price       decimal.Decimal
	PriceSuffix string
	IsFeatured  bool
	Position    int32

	Features []*TierFeature
}

type TierFeature struct {
	ID     uint64
	TierID uint64

	Text       string
	IsIncluded bool
	Position   int32
}
