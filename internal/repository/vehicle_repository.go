package repository

import (
	"context"
	"errors"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type VehicleRepository interface {
	Create(ctx context.Context, v *model.Vehicle) error
	FindByID(ctx context.Context, id uint64) (*model.Vehicle, error)
	List(ctx context.Context, limit, offset int, city string) ([]model.Vehicle, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Vehicle, error)
	UpdateStatus(ctx context.Context, id uint64, status model.VehicleStatus) error
	UpdatePhotoURL(ctx context.Context, id uint64, photoURL string) error
	SetDB(db *gorm.DB)
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *vehicleRepository) Create(ctx context.Context, v *model.Vehicle) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var v model.Vehicle
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vehicleRepository) List(ctx context.Context, limit, offset int, city string) ([]model.Vehicle, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.Vehicle{})
	if city != "" {
		q = q.Where("city = ?", city)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Vehicle
	if err := q.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *vehicleRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Vehicle, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Vehicle
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, id uint64, status model.VehicleStatus) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *vehicleRepository) UpdatePhotoURL(ctx context.Context, id uint64, photoURL string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Update("photo_url", photoURL).Error
}
