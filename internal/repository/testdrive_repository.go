package repository

import (
	"context"
	"time"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"gorm.io/gorm"
)

type TestDriveRepository interface {
	CreateWithMessage(ctx context.Context, msg *model.Message, td *model.TestDriveRequest) error
	FindByID(ctx context.Context, id uint64) (*model.TestDriveRequest, error)
	// ResolveIfPending is the same compare-and-set guard offers use: zero rows
	// affected means the request was already answered.
	ResolveIfPending(ctx context.Context, id uint64, revision int, status model.TestDriveStatus) (int64, error)
	SetDB(db *gorm.DB)
}

type testDriveRepository struct {
	db *gorm.DB
}

func NewTestDriveRepository(db *gorm.DB) TestDriveRepository {
	return &testDriveRepository{db: db}
}

func (r *testDriveRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *testDriveRepository) CreateWithMessage(ctx context.Context, msg *model.Message, td *model.TestDriveRequest) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		td.MessageID = msg.ID
		if err := tx.Create(td).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", time.Now()).Error
	})
}

func (r *testDriveRepository) FindByID(ctx context.Context, id uint64) (*model.TestDriveRequest, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var td model.TestDriveRequest
	if err := r.db.WithContext(ctx).First(&td, id).Error; err != nil {
		return nil, err
	}
	return &td, nil
}

func (r *testDriveRepository) ResolveIfPending(ctx context.Context, id uint64, revision int, status model.TestDriveStatus) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.TestDriveRequest{}).
		Where("id = ? AND status = ? AND revision = ?", id, model.TestDriveStatusPending, revision).
		Updates(map[string]interface{}{
			"status":   status,
			"revision": revision + 1,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
