package repositories

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

// CalendarRepository stores custom and reminder events. Sale and installment
// events are never written here.
type CalendarRepository struct {
	DB *pgxpool.Pool
}

func NewCalendarRepository(db *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{DB: db}
}

const calendarColumns = `id, title, COALESCE(description, ''), date, type, status, amount, customer_id`

func scanEvent(row pgx.Row) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	var id int
	if err := row.Scan(&id, &e.Title, &e.Description, &e.Date, &e.Type, &e.Status, &e.Amount, &e.CustomerID); err != nil {
		return nil, err
	}
	e.ID = strconv.Itoa(id)
	return &e, nil
}

func (r *CalendarRepository) GetAll(ctx context.Context) ([]*models.CalendarEvent, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+calendarColumns+` FROM calendar_events ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*models.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *CalendarRepository) Get(ctx context.Context, id int) (*models.CalendarEvent, error) {
	e, err := scanEvent(r.DB.QueryRow(ctx, `SELECT `+calendarColumns+` FROM calendar_events WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *CalendarRepository) Create(ctx context.Context, e *models.CalendarEvent) error {
	var id int
	err := r.DB.QueryRow(ctx,
		`INSERT INTO calendar_events(title, description, date, type, status, amount, customer_id)
         VALUES($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
         RETURNING id`,
		e.Title, e.Description, e.Date, e.Type, e.Status, e.Amount, e.CustomerID,
	).Scan(&id)
	if err != nil {
		return err
	}
	e.ID = strconv.Itoa(id)
	return nil
}

func (r *CalendarRepository) Update(ctx context.Context, e *models.CalendarEvent) error {
	id, err := strconv.Atoi(e.ID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.DB.Exec(ctx,
		`UPDATE calendar_events SET title=$1, description=NULLIF($2, ''), date=$3, type=$4, status=$5,
                amount=$6, customer_id=$7, updated_at=CURRENT_TIMESTAMP
         WHERE id=$8`,
		e.Title, e.Description, e.Date, e.Type, e.Status, e.Amount, e.CustomerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CalendarRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM calendar_events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
