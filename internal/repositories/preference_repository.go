package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ventas-backend/internal/models"
)

type PreferenceRepository struct {
	DB *pgxpool.Pool
}

func NewPreferenceRepository(db *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, key string) (*models.Preference, error) {
	var p models.Preference
	err := r.DB.QueryRow(ctx,
		`SELECT key, value, updated_at FROM preferences WHERE key=$1`, key,
	).Scan(&p.Key, &p.Value, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PreferenceRepository) List(ctx context.Context) ([]*models.Preference, error) {
	rows, err := r.DB.Query(ctx, `SELECT key, value, updated_at FROM preferences ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := []*models.Preference{}
	for rows.Next() {
		var p models.Preference
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prefs = append(prefs, &p)
	}
	return prefs, rows.Err()
}

// Set upserts a preference value.
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO preferences(key, value, updated_at) VALUES($1, $2, CURRENT_TIMESTAMP)
         ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}
