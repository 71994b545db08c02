package model

import "time"

type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusCountered OfferStatus = "countered"
)

// Offer is the structured payload of an offer-kind message. Status and Revision
// are the only mutable fields; Revision guards every status write so two parties
// racing on the same pending offer cannot both win.
type Offer struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64      `gorm:"column:conversation_id;index" json:"conversationId"`
	MessageID      uint64      `gorm:"column:message_id;uniqueIndex" json:"messageId"`
	SenderUID      string      `gorm:"column:sender_uid;size:128;not null" json:"senderUid"`
	Price          int64       `gorm:"not null" json:"price"`
	CounterPrice   *int64      `gorm:"column:counter_price" json:"counterPrice,omitempty"`
	SupersedesID   *uint64     `gorm:"column:supersedes_id;index" json:"supersedesId,omitempty"`
	Status         OfferStatus `gorm:"size:32;not null;default:pending" json:"status"`
	Revision       int         `gorm:"not null;default:0" json:"revision"`
	DealCode       string      `gorm:"column:deal_code;size:32" json:"dealCode,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Offer) TableName() string {
	return "offers"
}

// Resolved reports whether the offer has left the pending state.
func (o *Offer) Resolved() bool {
	return o.Status != OfferStatusPending
}
