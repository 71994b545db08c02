package model

import "time"

type Conversation struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VehicleID     uint64     `gorm:"column:vehicle_id;index:idx_vehicle_buyer,unique" json:"vehicleId"`
	SellerUID     string     `gorm:"column:seller_uid;size:128;index" json:"sellerUid"`
	BuyerUID      string     `gorm:"column:buyer_uid;size:128;index:idx_vehicle_buyer,unique" json:"buyerUid"`
	Flagged       bool       `gorm:"column:flagged;not null;default:false" json:"flagged"`
	FlagReason    *string    `gorm:"column:flag_reason;size:255" json:"flagReason,omitempty"`
	LastMessageAt *time.Time `gorm:"column:last_message_at;index" json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Participant reports whether uid is the buyer or the seller of the thread.
func (c *Conversation) Participant(uid string) bool {
	return uid != "" && (uid == c.BuyerUID || uid == c.SellerUID)
}

// OtherParty returns the counterpart of uid in the conversation.
func (c *Conversation) OtherParty(uid string) string {
	if uid == c.BuyerUID {
		return c.SellerUID
	}
	return c.BuyerUID
}
