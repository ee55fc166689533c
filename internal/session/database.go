package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hugh/go-roster/internal/database"
	"github.com/hugh/go-roster/internal/database/models"
	"gorm.io/gorm"
)

// DatabaseStore keeps sessions in the sessions table. Expired rows are
// removed when they are read.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) Create(ctx context.Context, sess *Session) error {
	row := models.Session{
		ID:        sess.ID,
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt.UTC(),
		ExpiresAt: sess.ExpiresAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

func (s *DatabaseStore) Get(ctx context.Context, id string) (*Session, error) {
	var row models.Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	sess := &Session{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}
	if sess.Expired(time.Now()) {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *DatabaseStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired row and reports how many were deleted.
func (s *DatabaseStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purging sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
