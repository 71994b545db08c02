package model

import "time"

type MessageKind string

const (
	MessageKindChat      MessageKind = "chat"
	MessageKindOffer     MessageKind = "offer"
	MessageKindTestDrive MessageKind = "test_drive"
	MessageKindSystem    MessageKind = "system"
)

// Message rows are append-only: sender, kind, and body never change after insert.
type Message struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64      `gorm:"column:conversation_id;index" json:"conversationId"`
	SenderUID      string      `gorm:"column:sender_uid;size:128;index" json:"senderUid"`
	Kind           MessageKind `gorm:"column:kind;size:32;not null;default:chat" json:"kind"`
	Body           string      `gorm:"type:text;not null" json:"body"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
