package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sigmora-labs/ms-go-orders/app/entity"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
)

type OrderFilter struct {
	Status    string
	Email     string
	ProductID uint64
	Limit     int32
	Offset    int32
}

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_id, product_id, pricing_tier_id, full_name, email,
		price_at_purchase, price_currency, platform_choice, project_name,
		core_functionality, brand_details, payment_provider, invoice_id, payment_id,
		status, created_at, updated_at, paid_at`

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (
			order_id, product_id, pricing_tier_id, full_name, email,
			price_at_purchase, price_currency, platform_choice, project_name,
			core_functionality, brand_details, payment_provider, invoice_id, payment_id,
			status, created_at, updated_at, paid_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		order.OrderID,
		order.ProductID,
		order.PricingTierID,
		order.FullName,
		order.Email,
		order.PriceAtPurchase.StringFixed(2),
		order.PriceCurrency,
		order.PlatformChoice,
		order.ProjectName,
		order.CoreFunctionality,
		nullableStringValue(order.BrandDetails),
		order.PaymentProvider,
		nullableStringValue(order.InvoiceID),
		nullableStringValue(order.PaymentID),
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
		nullableTimeValue(order.PaidAt),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrOrderAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = uint64(id)
	return nil
}

func (r *OrderRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ? LIMIT 1`

	order := &entity.Order{}
	if err := scanOrder(r.db.QueryRowContext(ctx, query, orderID), order); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return order, nil
}

// SetInvoiceID records the gateway-assigned invoice id after a successful
// invoice creation.
func (r *OrderRepository) SetInvoiceID(ctx context.Context, orderID, invoiceID string, now time.Time) error {
	query := `UPDATE orders SET invoice_id = ?, updated_at = ? WHERE order_id = ?`

	result, err := r.db.ExecContext(ctx, query, invoiceID, now, orderID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// TransitionFromPending moves an order out of pending as a single conditional
// update. It returns false when the order was already terminal or unknown,
// which makes repeated webhook delivery a no-op without any locking.
func (r *OrderRepository) TransitionFromPending(ctx context.Context, orderID, newStatus string, paymentID *string, paidAt *time.Time, now time.Time) (bool, error) {
	query := `
		UPDATE orders SET
			status = ?,
			payment_id = COALESCE(?, payment_id),
			paid_at = COALESCE(?, paid_at),
			updated_at = ?
		WHERE order_id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		newStatus,
		nullableStringValue(paymentID),
		nullableTimeValue(paidAt),
		now,
		orderID,
		entity.OrderStatusPending,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`

	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if strings.TrimSpace(filter.Status) != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if strings.TrimSpace(filter.Email) != "" {
		conditions = append(conditions, "email = ?")
		args = append(args, filter.Email)
	}
	if filter.ProductID > 0 {
		conditions = append(conditions, "product_id = ?")
		args = append(args, filter.ProductID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*entity.Order, 0)
	for rows.Next() {
		item, err := scanOrderFromRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE status = ?
		  AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.OrderStatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*entity.Order, 0)
	for rows.Next() {
		item, err := scanOrderFromRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(scan rowScanner, order *entity.Order) error {
	var price string
	var brandDetails sql.NullString
	var invoiceID sql.NullString
	var paymentID sql.NullString
	var paidAt sql.NullTime

	err := scan.Scan(
		&order.ID,
		&order.OrderID,
		&order.ProductID,
		&order.PricingTierID,
		&order.FullName,
		&order.Email,
		&price,
		&order.PriceCurrency,
		&order.PlatformChoice,
		&order.ProjectName,
		&order.CoreFunctionality,
		&brandDetails,
		&order.PaymentProvider,
		&invoiceID,
		&paymentID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&paidAt,
	)
	if err != nil {
		return err
	}

	order.BrandDetails = stringPtrFromNull(brandDetails)
	order.InvoiceID = stringPtrFromNull(invoiceID)
	order.PaymentID = stringPtrFromNull(paymentID)
	order.PaidAt = timePtrFromNull(paidAt)

	parsedPrice, err := decimalFromString(price)
	if err != nil {
		return err
	}
	order.PriceAtPurchase = parsedPrice

	return nil
}

func scanOrderFromRows(rows *sql.Rows) (*entity.Order, error) {
	item := &entity.Order{}
	if err := scanOrder(rows, item); err != nil {
		return nil, err
	}
	return item, nil
}
