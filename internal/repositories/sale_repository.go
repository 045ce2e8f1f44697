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

type SaleRepository struct {
	DB *pgxpool.Pool
}

func NewSaleRepository(db *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{DB: db}
}

const saleColumns = `s.id, s.customer_id, COALESCE(c.name, ''), s.sale_number, COALESCE(s.reference_code, ''), s.date,
       s.payment_type, s.payment_method, COALESCE(s.period_type, ''), COALESCE(s.number_of_installments, 0),
       s.subtotal, s.discount_amount, s.total_amount, s.payment_status, s.status, COALESCE(s.notes, ''), s.created_at`

const saleFrom = ` FROM sales s LEFT JOIN customers c ON c.id = s.customer_id `

func scanSale(row pgx.Row) (*models.Sale, error) {
	var s models.Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.CustomerName, &s.SaleNumber, &s.ReferenceCode, &s.Date,
		&s.PaymentType, &s.PaymentMethod, &s.PeriodType, &s.NumberOfInstallments,
		&s.Subtotal, &s.DiscountAmount, &s.TotalAmount, &s.PaymentStatus, &s.Status, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSales(rows pgx.Rows) ([]*models.Sale, error) {
	defer rows.Close()
	sales := []*models.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// GenerateSaleNumber takes the next value of the sale number sequence.
func (r *SaleRepository) GenerateSaleNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	var next int
	if err := tx.QueryRow(ctx, "SELECT nextval('sale_number_sequence')").Scan(&next); err != nil {
		return "", fmt.Errorf("failed to get next sale number: %w", err)
	}
	return fmt.Sprintf("V-%06d", next), nil
}

// Create inserts the sale with its items and installments in one transaction.
func (r *SaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if sale.SaleNumber == "" {
		if sale.SaleNumber, err = r.GenerateSaleNumber(ctx, tx); err != nil {
			return err
		}
	}

	var installments *int
	if sale.NumberOfInstallments > 0 {
		installments = &sale.NumberOfInstallments
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO sales(customer_id, sale_number, reference_code, date, payment_type, payment_method,
                           period_type, number_of_installments, subtotal, discount_amount, total_amount,
                           payment_status, status, notes)
         VALUES($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13, NULLIF($14, ''))
         RETURNING id, created_at`,
		sale.CustomerID, sale.SaleNumber, sale.ReferenceCode, sale.Date, sale.PaymentType, sale.PaymentMethod,
		string(sale.PeriodType), installments, sale.Subtotal, sale.DiscountAmount, sale.TotalAmount,
		sale.PaymentStatus, sale.Status, sale.Notes,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting sale: %w", err)
	}

	for _, it := range sale.Items {
		it.SaleID = sale.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO sale_items(sale_id, product_id, product_name, quantity, unit_price, line_total)
             VALUES($1, $2, $3, $4, $5, $6) RETURNING id`,
			sale.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("inserting sale item: %w", err)
		}
		if it.ProductID != nil {
			if _, err = tx.Exec(ctx,
				`UPDATE products SET stock = GREATEST(stock - $1::int, 0), updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
				int(it.Quantity), *it.ProductID); err != nil {
				return fmt.Errorf("updating stock: %w", err)
			}
		}
	}

	for _, inst := range sale.Installments {
		inst.SaleID = sale.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO installments(sale_id, installment_number, due_date, amount, paid_amount, balance, status)
             VALUES($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			sale.ID, inst.InstallmentNumber, inst.DueDate, inst.Amount, inst.PaidAmount, inst.Balance, inst.Status,
		).Scan(&inst.ID)
		if err != nil {
			return fmt.Errorf("inserting installment: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *SaleRepository) Get(ctx context.Context, id int) (*models.Sale, error) {
	s, err := scanSale(r.DB.QueryRow(ctx, `SELECT `+saleColumns+saleFrom+`WHERE s.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// List returns every sale, newest first, without items or installments.
func (r *SaleRepository) List(ctx context.Context) ([]*models.Sale, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+saleColumns+saleFrom+`ORDER BY s.date DESC, s.id DESC`)
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

// ListPaginated searches sale number, reference code and customer name.
func (r *SaleRepository) ListPaginated(ctx context.Context, params models.SaleListParams) ([]*models.Sale, int, error) {
	where := `WHERE ($1 = '' OR s.sale_number ILIKE '%' || $1 || '%' OR s.reference_code ILIKE '%' || $1 || '%'
                OR c.name ILIKE '%' || $1 || '%')
              AND ($2 = 0 OR s.customer_id = $2)`

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*)`+saleFrom+where, params.Search, params.CustomerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting sales: %w", err)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+saleColumns+saleFrom+where+`
         ORDER BY s.date DESC, s.id DESC LIMIT $3 OFFSET $4`,
		params.Search, params.CustomerID, params.PageSize, (params.Page-1)*params.PageSize)
	if err != nil {
		return nil, 0, err
	}
	sales, err := collectSales(rows)
	return sales, total, err
}

func (r *SaleRepository) GetByCustomer(ctx context.Context, customerID int) ([]*models.Sale, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+saleColumns+saleFrom+`WHERE s.customer_id=$1 ORDER BY s.date DESC, s.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

// Delete removes a sale; items, installments, payments and its invoice cascade.
func (r *SaleRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM sales WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOverdueSalesCount counts installments sales with an unpaid installment due before now.
func (r *SaleRepository) GetOverdueSalesCount(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(DISTINCT s.id)
         FROM sales s JOIN installments i ON i.sale_id = s.id
         WHERE s.payment_type = 'installments'
           AND i.status <> 'paid' AND (i.status = 'overdue' OR i.due_date < $1)`, now).Scan(&n)
	return n, err
}

func (r *SaleRepository) GetTotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM sales`).Scan(&total)
	return total, err
}

// GetStatsComparison returns sale count and revenue for the month of now and the one before.
func (r *SaleRepository) GetStatsComparison(ctx context.Context, now time.Time) (count, revenue models.MonthlyComparison, err error) {
	cur := timeutil.StartOfMonth(now)
	prev := cur.AddDate(0, -1, 0)
	next := cur.AddDate(0, 1, 0)

	var cc, pc int
	err = r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE date >= $1 AND date < $2),
                COUNT(*) FILTER (WHERE date >= $3 AND date < $1),
                COALESCE(SUM(total_amount) FILTER (WHERE date >= $1 AND date < $2), 0),
                COALESCE(SUM(total_amount) FILTER (WHERE date >= $3 AND date < $1), 0)
         FROM sales`,
		cur, next, prev,
	).Scan(&cc, &pc, &revenue.Current, &revenue.Previous)
	if err != nil {
		return count, revenue, fmt.Errorf("sales comparison: %w", err)
	}
	count.Current, count.Previous = float64(cc), float64(pc)
	return count, revenue, nil
}
