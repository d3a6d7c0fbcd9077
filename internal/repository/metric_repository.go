package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bluenest/internal/model"
)

// MetricRepository writes and reads dashboard_metrics rows.
type MetricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// Upsert records one metric value for (owner, type, day), replacing any
// earlier value from the same day. The job may run more than once per day.
func (r *MetricRepository) Upsert(ctx context.Context, owner, metricType string, value float64, day time.Time) error {
	db := r.db.WithContext(ctx)
	recorded := model.Day(day)

	var metric model.DashboardMetric
	err := db.Where("owner = ? AND metric_type = ? AND date_recorded = ?", owner, metricType, recorded).
		First(&metric).Error
	switch {
	case err == nil:
		metric.MetricValue = value
		if err := db.Save(&metric).Error; err != nil {
			return fmt.Errorf("update metric: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		metric = model.DashboardMetric{
			Owner:        owner,
			MetricType:   metricType,
			MetricValue:  value,
			DateRecorded: recorded,
		}
		if err := db.Create(&metric).Error; err != nil {
			return fmt.Errorf("create metric: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find metric: %w", err)
	}
}

// ListForDay returns all of the owner's metrics recorded for the given day.
func (r *MetricRepository) ListForDay(ctx context.Context, owner string, day time.Time) ([]model.DashboardMetric, error) {
	var metrics []model.DashboardMetric
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND date_recorded = ?", owner, model.Day(day)).
		Order("metric_type ASC").
		Find(&metrics).Error; err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	return metrics, nil
}
