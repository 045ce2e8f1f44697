package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
	"ventas-backend/internal/timeutil"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, COALESCE(dni, ''), COALESCE(phone, ''), COALESCE(secondary_phone, ''),
       COALESCE(email, ''), COALESCE(address, ''), COALESCE(notes, ''), is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.DNI, &c.Phone, &c.SecondaryPhone,
		&c.Email, &c.Address, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCustomers(rows pgx.Rows) ([]*models.Customer, error) {
	defer rows.Close()
	customers := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, dni, phone, secondary_phone, email, address, notes, is_active)
         VALUES($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
         RETURNING id, created_at, updated_at`,
		c.Name, c.DNI, c.Phone, c.SecondaryPhone, c.Email, c.Address, c.Notes, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	c, err := scanCustomer(r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// List returns every customer, archived ones included, newest first.
func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectCustomers(rows)
}

// ListPaginated searches name, DNI and both phones.
func (r *CustomerRepository) ListPaginated(ctx context.Context, page, pageSize int, search string, includeArchived bool) ([]*models.Customer, int, error) {
	where := `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR dni ILIKE '%' || $1 || '%'
                OR phone ILIKE '%' || $1 || '%' OR secondary_phone ILIKE '%' || $1 || '%')
              AND ($2 OR is_active)`

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM customers `+where, search, includeArchived).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers `+where+`
         ORDER BY name ASC LIMIT $3 OFFSET $4`,
		search, includeArchived, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	customers, err := collectCustomers(rows)
	return customers, total, err
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET name=$1, dni=NULLIF($2, ''), phone=NULLIF($3, ''), secondary_phone=NULLIF($4, ''),
                email=NULLIF($5, ''), address=NULLIF($6, ''), notes=NULLIF($7, ''), is_active=$8,
                updated_at=CURRENT_TIMESTAMP
         WHERE id=$9`,
		c.Name, c.DNI, c.Phone, c.SecondaryPhone, c.Email, c.Address, c.Notes, c.IsActive, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Archive hides a customer from active listings without losing its sales.
func (r *CustomerRepository) Archive(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET is_active=false, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) HasSales(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sales WHERE customer_id=$1)`, id).Scan(&exists)
	return exists, err
}

// Count counts active customers.
func (r *CustomerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE is_active`).Scan(&n)
	return n, err
}

func (r *CustomerRepository) GetRecent(ctx context.Context, limit int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE is_active ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectCustomers(rows)
}

// GetMonthlyComparison counts customers created this month and last month.
func (r *CustomerRepository) GetMonthlyComparison(ctx context.Context, now time.Time) (models.MonthlyComparison, error) {
	return monthlyCount(ctx, r.DB, "customers", now)
}

// monthlyCount counts rows of table by created_at in the month of now and the one before.
func monthlyCount(ctx context.Context, db *pgxpool.Pool, table string, now time.Time) (models.MonthlyComparison, error) {
	cur := timeutil.StartOfMonth(now)
	prev := cur.AddDate(0, -1, 0)
	next := cur.AddDate(0, 1, 0)

	var c, p int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2),
                COUNT(*) FILTER (WHERE created_at >= $3 AND created_at < $1)
         FROM `+table,
		cur, next, prev,
	).Scan(&c, &p)
	if err != nil {
		return models.MonthlyComparison{}, fmt.Errorf("monthly %s: %w", table, err)
	}
	return models.MonthlyComparison{Current: float64(c), Previous: float64(p)}, nil
}
