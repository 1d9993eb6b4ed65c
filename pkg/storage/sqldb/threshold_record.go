package sqldb

import (
	"time"

	"cryptopusher/internal/alert"
)

// ThresholdRecord is one symbol's alert bounds. NULL means unset.
type ThresholdRecord struct {
	ID uint `gorm:"primaryKey"`

	Symbol string   `gorm:"type:varchar(32);not null;uniqueIndex:idx_alert_threshold_symbol"`
	Low    *float64 `gorm:"column:low"`
	High   *float64 `gorm:"column:high"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (ThresholdRecord) TableName() string {
	return "alert_threshold"
}

// ToThresholdRecord converts a symbol's thresholds into a row.
func ToThresholdRecord(symbol string, th alert.Thresholds) *ThresholdRecord {
	rec := &ThresholdRecord{Symbol: symbol}
	if th.Low != nil {
		rec.Low = alert.Float(*th.Low)
	}
	if th.High != nil {
		rec.High = alert.Float(*th.High)
	}
	return rec
}

// Thresholds converts the row back into alert bounds.
func (r ThresholdRecord) Thresholds() alert.Thresholds {
	var th alert.Thresholds
	if r.Low != nil {
		th.Low = alert.Float(*r.Low)
	}
	if r.High != nil {
		th.High = alert.Float(*r.High)
	}
	return th
}
