package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Order struct {
	OrderID           string `json:"order_id"`
	ProductID         uint64 `json:"product_id"`
	PricingTierID     uint64 `json:"pricing_tier_id"`
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	PriceAtPurchase   string `json:"price_at_purchase"`
	PriceCurrency     string `json:"price_currency"`
	PlatformChoice    string `json:"platform_choice"`
	ProjectName       string `json:"project_name"`
	CoreFunctionality string `json:"core_functionality"`
	BrandDetails      string `json:"brand_details,omitempty"`
	PaymentProvider   string `json:"payment_provider"`
	InvoiceID         string `json:"invoice_id,omitempty"`
	PaymentID         string `json:"payment_id,omitempty"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
	PaidAt            string `json:"paid_at,omitempty"`
}

type OrderEnvelopeResponse struct {
	Order *Order `json:"order"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

type TierFeature struct {
	Text       string `json:"text"`
	IsIncluded bool   `json:"is_included"`
}

type PricingTier struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Price       string         `json:"price"`
	PriceSuffix string         `json:"price_suffix"`
	IsFeatured  bool           `json:"is_featured"`
	Features    []*TierFeature `json:"features"`
}

type Product struct {
	ID              uint64         `json:"id"`
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	LeadParagraph   string         `json:"lead_paragraph,omitempty"`
	ClientName      string         `json:"client_name,omitempty"`
	ProjectWebsite  string         `json:"project_website,omitempty"`
	PricingTitle    string         `json:"pricing_title,omitempty"`
	PricingSubtitle string         `json:"pricing_subtitle,omitempty"`
	PricingTiers    []*PricingTier `json:"pricing_tiers"`
}

type ProductEnvelopeResponse struct {
	Product *Product `json:"product"`
}

type ListProductsResponse struct {
	Products []*Product `json:"products"`
}
