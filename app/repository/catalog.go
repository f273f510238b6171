package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sigmora-labs/ms-go-orders/app/entity"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTierNotFound    = errors.New("pricing tier not found")
)

type CatalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const productColumns = `id, title, slug, category_id, lead_paragraph, client_name,
		project_website, pricing_title, pricing_subtitle, created_at, updated_at`

func (r *CatalogRepository) FindProductByID(ctx context.Context, id uint64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ? LIMIT 1`

	product := &entity.Product{}
	if err := scanProduct(r.db.QueryRowContext(ctx, query, id), product); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return product, nil
}

// FindTierForProduct resolves a pricing tier scoped to its product. A tier id
// that exists under a different product is treated as not found.
func (r *CatalogRepository) FindTierForProduct(ctx context.Context, tierID, productID uint64) (*entity.PricingTier, error) {
	query := `
		SELECT id, product_id, name, price, price_suffix, is_featured, position
		FROM pricing_tiers
		WHERE id = ? AND product_id = ?
		LIMIT 1
	`

	tier := &entity.PricingTier{}
	if err := scanTier(r.db.QueryRowContext(ctx, query, tierID, productID), tier); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return tier, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY title ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*entity.Product, 0)
	for rows.Next() {
		item := &entity.Product{}
		if err := scanProduct(rows, item); err != nil {
			return nil, err
		}
		products = append(products, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *CatalogRepository) ListTiersForProduct(ctx context.Context, productID uint64) ([]*entity.PricingTier, error) {
	query := `
		SELECT id, product_id, name, price, price_suffix, is_featured, position
		FROM pricing_tiers
		WHERE product_id = ?
		ORDER BY position ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]*entity.PricingTier, 0)
	for rows.Next() {
		item := &entity.PricingTier{}
		if err := scanTier(rows, item); err != nil {
			return nil, err
		}
		tiers = append(tiers, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tiers, nil
}

func (r *CatalogRepository) ListFeaturesForTier(ctx context.Context, tierID uint64) ([]*entity.TierFeature, error) {
	query := `
		SELECT id, tier_id, text, is_included, position
		FROM tier_features
		WHERE tier_id = ?
		ORDER BY position ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	features := make([]*entity.TierFeature, 0)
	for rows.Next() {
		item := &entity.TierFeature{}
		if err := rows.Scan(&item.ID, &item.TierID, &item.Text, &item.IsIncluded, &item.Position); err != nil {
			return nil, err
		}
		features = append(features, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return features, nil
}

func scanProduct(scan rowScanner, product *entity.Product) error {
	var categoryID sql.NullInt64
	var clientName sql.NullString
	var projectWebsite sql.NullString

	err := scan.Scan(
		&product.ID,
		&product.Title,
		&product.Slug,
		&categoryID,
		&product.LeadParagraph,
		&clientName,
		&projectWebsite,
		&product.PricingTitle,
		&product.PricingSubtitle,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return err
	}

	product.CategoryID = uint64PtrFromNull(categoryID)
	product.ClientName = stringPtrFromNull(clientName)
	product.ProjectWebsite = stringPtrFromNull(projectWebsite)

	return nil
}

func scanTier(scan rowScanner, tier *entity.PricingTier) error {
	var price string

	err := scan.Scan(
		&tier.ID,
		&tier.ProductID,
		&tier.Name,
		&price,
		&tier.PriceSuffix,
		&tier.IsFeatured,
		&tier.Position,
	)
	if err != nil {
		return err
	}

	parsedPrice, err := decimalFromString(price)
	if err != nil {
		return err
	}
	tier.Price = parsedPrice

	return nil
}
