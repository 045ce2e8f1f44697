package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) GetBySale(ctx context.Context, saleID int) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, sale_id, installment_id, amount, payment_method, payment_date, COALESCE(notes, ''), created_at
         FROM payments WHERE sale_id=$1 ORDER BY payment_date, id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.InstallmentID, &p.Amount, &p.PaymentMethod, &p.PaymentDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
