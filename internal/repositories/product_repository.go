package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

const productColumns = `id, name, COALESCE(description, ''), price, stock, is_active, created_at, updated_at`

func scanProducts(rows pgx.Rows) ([]*models.Product, error) {
	defer rows.Close()
	products := []*models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO products(name, description, price, stock, is_active)
         VALUES($1, NULLIF($2, ''), $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Price, p.Stock, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	err := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *ProductRepository) GetActive(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// Count counts active products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active`).Scan(&n)
	return n, err
}

func (r *ProductRepository) GetMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error) {
	return monthlyCount(ctx, r.DB, "products", now)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE products SET name=$1, description=NULLIF($2, ''), price=$3, stock=$4, is_active=$5,
                updated_at=CURRENT_TIMESTAMP
         WHERE id=$6`,
		p.Name, p.Description, p.Price, p.Stock, p.IsActive, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product. Sale items keep their product name.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
