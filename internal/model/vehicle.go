package model

import "time"

type VehicleStatus string

const (
	VehicleStatusActive   VehicleStatus = "active"
	VehicleStatusReserved VehicleStatus = "reserved"
	VehicleStatusSold     VehicleStatus = "sold"
)

// Vehicle is a used-car listing. Price is whole rupees.
type Vehicle struct {
	ID           uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerUID    string        `gorm:"column:seller_uid;size:128;index;not null" json:"sellerUid"`
	Title        string        `gorm:"size:120;not null" json:"title"`
	Make         string        `gorm:"size:64;not null" json:"make"`
	Model        string        `gorm:"size:64;not null" json:"model"`
	Year         int           `gorm:"not null" json:"year"`
	MileageKM    int           `gorm:"column:mileage_km;not null;default:0" json:"mileageKm"`
	FuelType     string        `gorm:"column:fuel_type;size:32" json:"fuelType,omitempty"`
	Transmission string        `gorm:"size:32" json:"transmission,omitempty"`
	City         string        `gorm:"size:64;index" json:"city,omitempty"`
	Price        int64         `gorm:"not null" json:"price"`
	Description  string        `gorm:"type:text;not null" json:"description"`
	PhotoURL     *string       `gorm:"column:photo_url;size:512" json:"photoUrl,omitempty"`
	Status       VehicleStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
