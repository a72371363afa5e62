package relation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyExists = errors.New("relation already exists")
	ErrNotFound      = errors.New("relation not found")
)

type (
	// RelationRepository is the one absent/present state machine shared by
	// favorites, shopping carts and subscriptions. Add fails on a present
	// pair, Remove fails on an absent one; the composite unique index on the
	// backing table is the final arbiter under concurrency.
	RelationRepository interface {
		Exists(ctx context.Context, subjectID, objectID uuid.UUID) (bool, error)
		Add(ctx context.Context, subjectID, objectID uuid.UUID) error
		Remove(ctx context.Context, subjectID, objectID uuid.UUID) error
	}

	relationRepository struct {
		db            *gorm.DB
		table         string
		subjectColumn string
		objectColumn  string
	}
)

func NewRelationRepository(db *gorm.DB, table, subjectColumn, objectColumn string) RelationRepository {
	return &relationRepository{
		db:            db,
		table:         table,
		subjectColumn: subjectColumn,
		objectColumn:  objectColumn,
	}
}

func (r *relationRepository) Exists(ctx context.Context, subjectID, objectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(r.table).
		Where(r.subjectColumn+" = ? AND "+r.objectColumn+" = ?", subjectID, objectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *relationRepository) Add(ctx context.Context, subjectID, objectID uuid.UUID) error {
	err := r.db.WithContext(ctx).Table(r.table).Create(map[string]interface{}{
		"id":            uuid.New(),
		r.subjectColumn: subjectID,
		r.objectColumn:  objectID,
		"created_at":    time.Now(),
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

func (r *relationRepository) Remove(ctx context.Context, subjectID, objectID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Exec("DELETE FROM "+r.table+" WHERE "+r.subjectColumn+" = ? AND "+r.objectColumn+" = ?",
			subjectID, objectID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
