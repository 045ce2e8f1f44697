package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

type InstallmentRepository struct {
	DB *pgxpool.Pool
}

func NewInstallmentRepository(db *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{DB: db}
}

const installmentColumns = `i.id, i.sale_id, i.installment_number, i.due_date, i.amount, i.paid_amount, i.balance, i.status, i.paid_date`

func scanInstallment(row pgx.Row, extra ...any) (*models.Installment, error) {
	var inst models.Installment
	dest := append([]any{&inst.ID, &inst.SaleID, &inst.InstallmentNumber, &inst.DueDate,
		&inst.Amount, &inst.PaidAmount, &inst.Balance, &inst.Status, &inst.PaidDate}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *InstallmentRepository) GetBySale(ctx context.Context, saleID int) ([]*models.Installment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+installmentColumns+` FROM installments i WHERE i.sale_id=$1 ORDER BY i.installment_number`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Installment{}
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (r *InstallmentRepository) Get(ctx context.Context, id int) (*models.Installment, error) {
	inst, err := scanInstallment(r.DB.QueryRow(ctx,
		`SELECT `+installmentColumns+` FROM installments i WHERE i.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return inst, nil
}

const upcomingQuery = `SELECT ` + installmentColumns + `, s.sale_number, COALESCE(s.number_of_installments, 0), s.customer_id, COALESCE(c.name, '')
         FROM installments i
         JOIN sales s ON s.id = i.sale_id
         LEFT JOIN customers c ON c.id = s.customer_id
         WHERE s.payment_type = 'installments' `

func (r *InstallmentRepository) queryUpcoming(ctx context.Context, sql string, args ...any) ([]*models.UpcomingInstallment, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.UpcomingInstallment{}
	for rows.Next() {
		var u models.UpcomingInstallment
		inst, err := scanInstallment(rows, &u.SaleNumber, &u.NumberOfInstallments, &u.CustomerID, &u.CustomerName)
		if err != nil {
			return nil, err
		}
		u.Installment = *inst
		out = append(out, &u)
	}
	return out, rows.Err()
}

// GetUpcoming lists unpaid installments due between from and to, inclusive.
func (r *InstallmentRepository) GetUpcoming(ctx context.Context, from, to time.Time) ([]*models.UpcomingInstallment, error) {
	return r.queryUpcoming(ctx,
		upcomingQuery+`AND i.status <> 'paid' AND i.due_date >= $1 AND i.due_date <= $2 ORDER BY i.due_date`, from, to)
}

// ListForCalendar lists every installment of installments-type sales.
func (r *InstallmentRepository) ListForCalendar(ctx context.Context) ([]*models.UpcomingInstallment, error) {
	return r.queryUpcoming(ctx, upcomingQuery+`ORDER BY i.due_date`)
}

// RecordPayment locks the installment row, lets apply compute the new state
// from it, then stores the installment, appends the payment to the ledger and
// refreshes the sale's payment_status in one transaction.
func (r *InstallmentRepository) RecordPayment(ctx context.Context, installmentID int, apply models.PaymentApplier) (*models.Installment, *models.Payment, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	locked, err := scanInstallment(tx.QueryRow(ctx,
		`SELECT `+installmentColumns+` FROM installments i WHERE i.id=$1 FOR UPDATE`, installmentID))
	if err != nil {
		return nil, nil, notFound(err)
	}

	inst, p, err := apply(locked)
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE installments SET paid_amount=$1, balance=$2, status=$3, paid_date=$4 WHERE id=$5`,
		inst.PaidAmount, inst.Balance, inst.Status, inst.PaidDate, locked.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("updating installment: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO payments(sale_id, installment_id, amount, payment_method, payment_date, notes)
         VALUES($1, $2, $3, $4, $5, NULLIF($6, ''))
         RETURNING id, created_at`,
		p.SaleID, p.InstallmentID, p.Amount, p.PaymentMethod, p.PaymentDate, p.Notes,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("inserting payment: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE sales SET
            payment_status = CASE WHEN NOT EXISTS (
                SELECT 1 FROM installments WHERE sale_id=$1 AND status <> 'paid') THEN 'paid' ELSE 'unpaid' END,
            status = CASE WHEN NOT EXISTS (
                SELECT 1 FROM installments WHERE sale_id=$1 AND status <> 'paid') THEN 'completed' ELSE 'pending' END
         WHERE id=$1`, locked.SaleID)
	if err != nil {
		return nil, nil, fmt.Errorf("refreshing sale status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return inst, p, nil
}
