package model

import "time"

// Metric types written by the daily aggregation job and read by the dashboard.
const (
	MetricCompletionRate = "completion_rate"
	MetricStreakDays     = "streak_days"
	MetricRolloverCount  = "rollover_count"
)

// DashboardMetric is one aggregated value per owner, type and day.
type DashboardMetric struct {
	ID           uint   `gorm:"primaryKey"`
	Owner        string `gorm:"index:idx_metrics_key,unique"`
	MetricType   string `gorm:"index:idx_metrics_key,unique"`
	MetricValue  float64
	DateRecorded time.Time `gorm:"index:idx_metrics_key,unique"`
}
