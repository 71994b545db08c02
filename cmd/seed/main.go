package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/wheeldeal/wheeldeal-backend/internal/config"
	"github.com/wheeldeal/wheeldeal-backend/internal/currency"
	"github.com/wheeldeal/wheeldeal-backend/internal/db"
	"github.com/wheeldeal/wheeldeal-backend/internal/model"
	"gorm.io/gorm"
)

const (
	demoSellerUID = "seed-seller-1"
	demoBuyerUID  = "seed-buyer-1"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("vehicles already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	vehicles := buildSeedVehicles()

	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range vehicles {
			if err := tx.Create(&vehicles[i]).Error; err != nil {
				return fmt.Errorf("insert vehicle %q: %w", vehicles[i].Title, err)
			}
		}
		return seedNegotiationThread(tx, &vehicles[0])
	})
	if err != nil {
		return err
	}

	log.Printf("seeded %d vehicles and one demo negotiation", len(vehicles))
	return nil
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	if strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		return true, nil
	}
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Vehicle{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count vehicles: %w", err)
	}
	return cnt == 0, nil
}

func buildSeedVehicles() []model.Vehicle {
	return []model.Vehicle{
		{
			SellerUID:    demoSellerUID,
			Title:        "2019 Maruti Suzuki Swift VXI",
			Make:         "Maruti Suzuki",
			Model:        "Swift VXI",
			Year:         2019,
			MileageKM:    42000,
			FuelType:     "petrol",
			Transmission: "manual",
			City:         "Pune",
			Price:        550000,
			Description:  "Single owner, full service history, new tyres in 2025.",
			Status:       model.VehicleStatusActive,
		},
		{
			SellerUID:    demoSellerUID,
			Title:        "2021 Hyundai Creta SX Diesel",
			Make:         "Hyundai",
			Model:        "Creta SX",
			Year:         2021,
			MileageKM:    28000,
			FuelType:     "diesel",
			Transmission: "automatic",
			City:         "Bengaluru",
			Price:        1450000,
			Description:  "Top-end trim, sunroof, extended warranty until 2027.",
			Status:       model.VehicleStatusActive,
		},
		{
			SellerUID:    "seed-seller-2",
			Title:        "2017 Honda City VX CVT",
			Make:         "Honda",
			Model:        "City VX",
			Year:         2017,
			MileageKM:    61000,
			FuelType:     "petrol",
			Transmission: "automatic",
			City:         "Mumbai",
			Price:        720000,
			Description:  "Second owner, well maintained, minor scratch on rear bumper.",
			Status:       model.VehicleStatusActive,
		},
		{
			SellerUID:    "seed-seller-2",
			Title:        "2020 Tata Nexon XZ+",
			Make:         "Tata",
			Model:        "Nexon XZ+",
			Year:         2020,
			MileageKM:    35000,
			FuelType:     "petrol",
			Transmission: "manual",
			City:         "Delhi",
			Price:        850000,
			Description:  "5-star safety rating, company serviced, fresh insurance.",
			Status:       model.VehicleStatusActive,
		},
	}
}

// seedNegotiationThread creates a buyer offer and a seller counter on the
// first listing so the UI has a live negotiation to show out of the box.
func seedNegotiationThread(tx *gorm.DB, v *model.Vehicle) error {
	now := time.Now()
	cv := &model.Conversation{
		VehicleID:     v.ID,
		SellerUID:     v.SellerUID,
		BuyerUID:      demoBuyerUID,
		LastMessageAt: &now,
	}
	if err := tx.Create(cv).Error; err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	greeting := &model.Message{
		ConversationID: cv.ID,
		SenderUID:      demoBuyerUID,
		Kind:           model.MessageKindChat,
		Body:           "Hi, is the Swift still available? Any accidents?",
	}
	if err := tx.Create(greeting).Error; err != nil {
		return fmt.Errorf("insert greeting: %w", err)
	}

	offerPrice := int64(500000)
	offerMsg := &model.Message{
		ConversationID: cv.ID,
		SenderUID:      demoBuyerUID,
		Kind:           model.MessageKindOffer,
		Body:           fmt.Sprintf("Offered %s", currency.FormatINR(offerPrice)),
	}
	if err := tx.Create(offerMsg).Error; err != nil {
		return fmt.Errorf("insert offer message: %w", err)
	}
	first := &model.Offer{
		ConversationID: cv.ID,
		MessageID:      offerMsg.ID,
		SenderUID:      demoBuyerUID,
		Price:          offerPrice,
		Status:         model.OfferStatusCountered,
	}
	if err := tx.Create(first).Error; err != nil {
		return fmt.Errorf("insert first offer: %w", err)
	}

	counterPrice := int64(530000)
	counterMsg := &model.Message{
		ConversationID: cv.ID,
		SenderUID:      v.SellerUID,
		Kind:           model.MessageKindOffer,
		Body:           fmt.Sprintf("Countered at %s", currency.FormatINR(counterPrice)),
	}
	if err := tx.Create(counterMsg).Error; err != nil {
		return fmt.Errorf("insert counter message: %w", err)
	}
	counter := &model.Offer{
		ConversationID: cv.ID,
		MessageID:      counterMsg.ID,
		SenderUID:      v.SellerUID,
		Price:          counterPrice,
		CounterPrice:   &offerPrice,
		SupersedesID:   &first.ID,
		Status:         model.OfferStatusPending,
	}
	if err := tx.Create(counter).Error; err != nil {
		return fmt.Errorf("insert counter offer: %w", err)
	}
	return nil
}
