package sqldb

import (
	"context"
	"fmt"

	"cryptopusher/internal/alert"

	"gorm.io/gorm/clause"
)

// ThresholdStore is an alert.ThresholdSource backed by the alert_threshold table.
type ThresholdStore struct {
	client *Client
}

func NewThresholdStore(client *Client) *ThresholdStore {
	return &ThresholdStore{client: client}
}

// Load returns every row that has at least one bound set.
func (s *ThresholdStore) Load(ctx context.Context) (alert.ThresholdSet, error) {
	var records []ThresholdRecord
	if err := s.client.DB.WithContext(ctx).Order("symbol").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	set := make(alert.ThresholdSet, len(records))
	for _, r := range records {
		th := r.Thresholds()
		if th.IsEmpty() {
			continue
		}
		set[r.Symbol] = th
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("table %s: %w", ThresholdRecord{}.TableName(), alert.ErrNoThresholds)
	}
	return set, nil
}

// Save upserts one row per symbol in set.
func (s *ThresholdStore) Save(ctx context.Context, set alert.ThresholdSet) error {
	if len(set) == 0 {
		return nil
	}

	records := make([]*ThresholdRecord, 0, len(set))
	for _, sym := range set.Symbols() {
		records = append(records, ToThresholdRecord(sym, set[sym]))
	}

	tx := s.client.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"low", "high", "updated_at"}),
	}).Create(&records)

	if tx.Error != nil {
		return fmt.Errorf("save thresholds: %w", tx.Error)
	}
	return nil
}
