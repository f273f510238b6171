package service

import (
	"context"

	"github.com/sigmora-labs/ms-go-orders/app/entity"
)

// GetProduct loads one product with its pricing tiers and tier features.
func (s *OrderService) GetProduct(ctx context.Context, id uint64) (*entity.Product, error) {
	product, err := s.catalogRepo.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if err := s.attachTiers(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *OrderService) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	products, err := s.catalogRepo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		if err := s.attachTiers(ctx, product); err != nil {
			return nil, err
		}
	}

	return products, nil
}

func (s *OrderService) attachTiers(ctx context.Context, product *entity.Product) error {
	tiers, err := s.catalogRepo.ListTiersForProduct(ctx, product.ID)
	if err != nil {
		return err
	}

	for _, tier := range tiers {
		features, err := s.catalogRepo.ListFeaturesForTier(ctx, tier.ID)
		if err != nil {
			return err
		}
		tier.Features = features
	}
	product.PricingTiers = tiers

	return nil
}
