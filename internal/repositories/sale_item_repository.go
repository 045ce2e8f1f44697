package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

type SaleItemRepository struct {
	DB *pgxpool.Pool
}

func NewSaleItemRepository(db *pgxpool.Pool) *SaleItemRepository {
	return &SaleItemRepository{DB: db}
}

func (r *SaleItemRepository) GetBySale(ctx context.Context, saleID int) ([]*models.SaleItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, sale_id, product_id, product_name, quantity, unit_price, line_total
         FROM sale_items WHERE sale_id=$1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.SaleItem{}
	for rows.Next() {
		var it models.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// GetSalesForProduct lists every sale line of a product, newest sale first.
func (r *SaleItemRepository) GetSalesForProduct(ctx context.Context, productID int) ([]*models.ProductSale, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT s.id, s.sale_number, s.date, COALESCE(c.name, ''), si.quantity, si.unit_price, si.line_total
         FROM sale_items si
         JOIN sales s ON s.id = si.sale_id
         LEFT JOIN customers c ON c.id = s.customer_id
         WHERE si.product_id=$1
         ORDER BY s.date DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.ProductSale{}
	for rows.Next() {
		var ps models.ProductSale
		if err := rows.Scan(&ps.SaleID, &ps.SaleNumber, &ps.Date, &ps.CustomerName, &ps.Quantity, &ps.UnitPrice, &ps.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, &ps)
	}
	return out, rows.Err()
}
