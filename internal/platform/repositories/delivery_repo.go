package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"sitetrack/internal/engine/tracking"
	"sitetrack/internal/platform/models"
)

const defaultListLimit = 100

type DeliveryRepository struct {
	db *sql.DB
}

func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	if d.ID == "" {
		d.ID = "dlv_" + uuid.New().String()
	}
	if d.CreatedAt == 0 {
		d.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO deliveries (id, page_url, result, status_code, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.PageURL, d.Result, d.StatusCode, d.Error, d.DurationMS, d.CreatedAt)
	return err
}

// Record stores submissions that reached the network. Aborted ones are
// only counted in metrics.
func (r *DeliveryRepository) Record(ctx context.Context, o tracking.Outcome) {
	if !o.Result.Attempted() {
		return
	}

	d := &models.Delivery{
		PageURL:    o.PageURL,
		Result:     o.Result.String(),
		StatusCode: o.StatusCode,
		DurationMS: o.Duration.Milliseconds(),
		CreatedAt:  o.At.Unix(),
	}
	if o.Err != nil {
		d.Error = o.Err.Error()
	}

	// The submission context may already be past its deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := r.Create(ctx, d); err != nil {
		log.Error().Err(err).Msg("failed to record delivery")
	}
}

func (r *DeliveryRepository) List(ctx context.Context, limit int) ([]*models.Delivery, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	query := `SELECT id, page_url, result, status_code, error, duration_ms, created_at FROM deliveries ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := []*models.Delivery{}
	for rows.Next() {
		var d models.Delivery
		var statusCode sql.NullInt64
		var errStr sql.NullString

		if err := rows.Scan(&d.ID, &d.PageURL, &d.Result, &statusCode, &errStr, &d.DurationMS, &d.CreatedAt); err != nil {
			return nil, err
		}
		if statusCode.Valid {
			d.StatusCode = int(statusCode.Int64)
		}
		if errStr.Valid {
			d.Error = errStr.String
		}
		deliveries = append(deliveries, &d)
	}
	return deliveries, rows.Err()
}

func (r *DeliveryRepository) CountByResult(ctx context.Context, since int64) (*models.DeliveryStats, error) {
	query := `SELECT result, COUNT(*) FROM deliveries WHERE created_at >= ? GROUP BY result`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.DeliveryStats{Since: since, ByResult: map[string]int64{}}
	for rows.Next() {
		var result string
		var count int64
		if err := rows.Scan(&result, &count); err != nil {
			return nil, err
		}
		stats.ByResult[result] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

// DeleteOlderThan removes deliveries created before ts and returns how many
// rows went away.
func (r *DeliveryRepository) DeleteOlderThan(ctx context.Context, ts int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deliveries WHERE created_at < ?`, ts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
