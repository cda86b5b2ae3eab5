package newsletter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lunelle.GO/model/entity"
)

// GormStore keeps subscribers in the application database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the subscriber table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&entity.NewsletterSubscriber{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Insert(ctx context.Context, email string, source *string) (*entity.NewsletterSubscriber, error) {
	sub := &entity.NewsletterSubscriber{
		ID:           uuid.NewString(),
		Email:        email,
		SubscribedAt: time.Now().UTC(),
		Source:       source,
	}
	err := s.db.WithContext(ctx).Create(sub).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueFailure(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Count returns the number of stored subscribers.
func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&entity.NewsletterSubscriber{}).Count(&n).Error
	return n, err
}

// isUniqueFailure catches drivers that do not translate constraint errors.
func isUniqueFailure(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "Duplicate entry"))
}
