package model

import "time"

type TestDriveStatus string

const (
	TestDriveStatusPending   TestDriveStatus = "pending"
	TestDriveStatusConfirmed TestDriveStatus = "confirmed"
	TestDriveStatusDeclined  TestDriveStatus = "declined"
)

// TestDriveRequest is the payload of a test_drive message. It deliberately has
// its own status enum: scheduling confirmation and price negotiation share a
// vocabulary in the UI, but an offer must never be able to reach "confirmed".
type TestDriveRequest struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64          `gorm:"column:conversation_id;index" json:"conversationId"`
	MessageID      uint64          `gorm:"column:message_id;uniqueIndex" json:"messageId"`
	SenderUID      string          `gorm:"column:sender_uid;size:128;not null" json:"senderUid"`
	ProposedAt     time.Time       `gorm:"column:proposed_at;not null" json:"proposedAt"`
	Status         TestDriveStatus `gorm:"size:32;not null;default:pending" json:"status"`
	Revision       int             `gorm:"not null;default:0" json:"revision"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (TestDriveRequest) TableName() string {
	return "test_drive_requests"
}
