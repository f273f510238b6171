package mapper

import (
	"time"

	"github.com/sigmora-labs/ms-go-orders/app/entity"
	"github.com/sigmora-labs/ms-go-orders/app/types"
)

func OrderToResponse(item *entity.Order) *types.Order {
	if item == nil {
		return nil
	}

	resp := &types.Order{
		OrderID:           item.OrderID,
		ProductID:         item.ProductID,
		PricingTierID:     item.PricingTierID,
		FullName:          item.FullName,
		Email:             item.Email,
		PriceAtPurchase:   item.PriceAtPurchase.StringFixed(2),
		PriceCurrency:     item.PriceCurrency,
		PlatformChoice:    item.PlatformChoice,
		ProjectName:       item.ProjectName,
		CoreFunctionality: item.CoreFunctionality,
		BrandDetails:      derefString(item.BrandDetails),
		PaymentProvider:   item.PaymentProvider,
		InvoiceID:         derefString(item.InvoiceID),
		PaymentID:         derefString(item.PaymentID),
		Status:            item.Status,
		CreatedAt:         item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.PaidAt != nil {
		resp.PaidAt = item.PaidAt.UTC().Format(time.RFC3339)
	}

	return resp
}

func OrdersToResponse(items []*entity.Order) []*types.Order {
	result := make([]*types.Order, 0, len(items))
	for _, item := range items {
		result = append(result, OrderToResponse(item))
	}
	return result
}

func ProductToResponse(item *entity.Product) *types.Product {
	if item == nil {
		return nil
	}

	return &types.Product{
		ID:              item.ID,
		Title:           item.Title,
		Slug:            item.Slug,
		LeadParagraph:   item.LeadParagraph,
		ClientName:      derefString(item.ClientName),
		ProjectWebsite:  derefString(item.ProjectWebsite),
		PricingTitle:    item.PricingTitle,
		PricingSubtitle: item.PricingSubtitle,
		PricingTiers:    tiersToResponse(item.PricingTiers),
	}
}

func ProductsToResponse(items []*entity.Product) []*types.Product {
	result := make([]*types.Product, 0, len(items))
	for _, item := range items {
		result = append(result, ProductToResponse(item))
	}
	return result
}

func tiersToResponse(items []*entity.PricingTier) []*types.PricingTier {
	result := make([]*types.PricingTier, 0, len(items))
	for _, item := range items {
		features := make([]*types.TierFeature, 0, len(item.Features))
		for _, feature := range item.Features {
			features = append(features, &types.TierFeature{
				Text:       feature.Text,
				IsIncluded: feature.IsIncluded,
			})
		}
		result = append(result, &types.PricingTier{
			ID:          item.ID,
			Name:        item.Name,
			Price:       item.Price.StringFixed(2),
			PriceSuffix: item.PriceSuffix,
			IsFeatured:  item.IsFeatured,
			Features:    features,
		})
	}
	return result
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
