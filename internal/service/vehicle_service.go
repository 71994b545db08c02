package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"github.com/wheeldeal/wheeldeal-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type VehicleInput struct {
	Title        string
	Make         string
	Model        string
	Year         int
	MileageKM    int
	FuelType     string
	Transmission string
	City         string
	Price        int64
	Description  string
	PhotoURL     *string
}

type VehicleService interface {
	Create(ctx context.Context, sellerUID string, in VehicleInput) (*model.Vehicle, error)
	Get(ctx context.Context, id uint64) (*model.Vehicle, error)
	List(ctx context.Context, limit, offset int, city string) ([]model.Vehicle, int64, error)
	ListMine(ctx context.Context, sellerUID string) ([]model.Vehicle, error)
	AttachPhoto(ctx context.Context, id uint64, sellerUID, photoURL string) error
}

type vehicleService struct {
	repo repository.VehicleRepository
}

func NewVehicleService(repo repository.VehicleRepository) VehicleService {
	return &vehicleService{repo: repo}
}

func (s *vehicleService) Create(ctx context.Context, sellerUID string, in VehicleInput) (*model.Vehicle, error) {
	if sellerUID == "" {
		return nil, errors.New("seller is required")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)
	if in.Title == "" || len(in.Title) > 120 {
		return nil, errors.New("invalid title")
	}
	if in.Make == "" || in.Model == "" {
		return nil, errors.New("make and model are required")
	}
	if in.Year < 1950 || in.Year > time.Now().Year()+1 {
		return nil, errors.New("invalid year")
	}
	if in.Price <= 0 {
		return nil, errors.New("price must be positive")
	}
	if in.MileageKM < 0 {
		return nil, errors.New("invalid mileage")
	}
	if in.PhotoURL != nil && strings.HasPrefix(strings.TrimSpace(*in.PhotoURL), "data:") {
		return nil, errors.New("photoUrl must be a URL, not data URI")
	}

	v := &model.Vehicle{
		SellerUID:    sellerUID,
		Title:        in.Title,
		Make:         in.Make,
		Model:        in.Model,
		Year:         in.Year,
		MileageKM:    in.MileageKM,
		FuelType:     strings.TrimSpace(in.FuelType),
		Transmission: strings.TrimSpace(in.Transmission),
		City:         strings.TrimSpace(in.City),
		Price:        in.Price,
		Description:  strings.TrimSpace(in.Description),
		PhotoURL:     in.PhotoURL,
		Status:       model.VehicleStatusActive,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *vehicleService) Get(ctx context.Context, id uint64) (*model.Vehicle, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *vehicleService) List(ctx context.Context, limit, offset int, city string) ([]model.Vehicle, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset, strings.TrimSpace(city))
}

func (s *vehicleService) ListMine(ctx context.Context, sellerUID string) ([]model.Vehicle, error) {
	return s.repo.ListBySeller(ctx, sellerUID)
}

func (s *vehicleService) AttachPhoto(ctx context.Context, id uint64, sellerUID, photoURL string) error {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if v.SellerUID != sellerUID {
		return ErrForbidden
	}
	return s.repo.UpdatePhotoURL(ctx, id, photoURL)
}
