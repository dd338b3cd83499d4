package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var record model.Record
	err := r.db.WithContext(ctx).First(&record, "record_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get record %s: %w", key, err)
	}
	return record.Value, true, nil
}

func (r *RecordRepository) Set(ctx context.Context, key, value string) error {
	record := model.Record{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("set record %s: %w", key, err)
	}
	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Record{}, "record_key = ?", key).Error; err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

func (r *RecordRepository) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&model.Record{}).
		Order("record_key asc").
		Pluck("record_key", &keys).Error
	return keys, err
}
