package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

func formatInvoiceNumber(n int64) string {
	return fmt.Sprintf("FAC-%06d", n)
}

// GenerateInvoiceNumber takes the next value of the invoice number sequence.
func (r *InvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	var next int64
	err := r.DB.QueryRow(ctx, "SELECT nextval('invoice_number_sequence')").Scan(&next)
	if err != nil {
		return "", fmt.Errorf("failed to get next invoice number: %w", err)
	}
	return formatInvoiceNumber(next), nil
}

// GetNextInvoiceNumber previews the next number without consuming it.
func (r *InvoiceRepository) GetNextInvoiceNumber(ctx context.Context) (string, error) {
	var last int64
	var called bool
	err := r.DB.QueryRow(ctx, "SELECT last_value, is_called FROM invoice_number_sequence").Scan(&last, &called)
	if err != nil {
		return "", fmt.Errorf("failed to read invoice sequence: %w", err)
	}
	if called {
		last++
	}
	return formatInvoiceNumber(last), nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.InvoiceNumber == "" {
		number, err := r.GenerateInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO invoices(sale_id, customer_id, invoice_number, total_amount, status)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		inv.SaleID, inv.CustomerID, inv.InvoiceNumber, inv.TotalAmount, inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt)
}

const invoiceSelect = `SELECT i.id, i.sale_id, i.customer_id, i.invoice_number, i.total_amount, i.status, i.created_at,
       COALESCE(c.name, ''), COALESCE(s.sale_number, '')
       FROM invoices i
       LEFT JOIN customers c ON c.id = i.customer_id
       LEFT JOIN sales s ON s.id = i.sale_id `

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.SaleID, &inv.CustomerID, &inv.InvoiceNumber, &inv.TotalAmount, &inv.Status,
		&inv.CreatedAt, &inv.CustomerName, &inv.SaleNumber)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) list(ctx context.Context, sql string, args ...any) ([]*models.Invoice, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []*models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) Get(ctx context.Context, id int) (*models.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRow(ctx, invoiceSelect+`WHERE i.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

// GetAllWithDetails lists invoices joined with customer name and sale number.
func (r *InvoiceRepository) GetAllWithDetails(ctx context.Context) ([]*models.Invoice, error) {
	return r.list(ctx, invoiceSelect+`ORDER BY i.created_at DESC`)
}

func (r *InvoiceRepository) GetBySaleID(ctx context.Context, saleID int) (*models.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRow(ctx, invoiceSelect+`WHERE i.sale_id=$1`, saleID))
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

func (r *InvoiceRepository) GetByCustomer(ctx context.Context, customerID int) ([]*models.Invoice, error) {
	return r.list(ctx, invoiceSelect+`WHERE i.customer_id=$1 ORDER BY i.created_at DESC`, customerID)
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int, status models.InvoiceStatus) error {
	tag, err := r.DB.Exec(ctx, `UPDATE invoices SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
