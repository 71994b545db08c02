package model

import "time"

// ConversationState tracks how far each participant has read a thread. A party
// has unread messages when the counterpart appended something after LastReadAt.
type ConversationState struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	ConversationID uint64    `gorm:"column:conversation_id;uniqueIndex:uniq_conv_uid"`
	UID            string    `gorm:"column:uid;size:128;uniqueIndex:uniq_conv_uid"`
	LastReadAt     time.Time `gorm:"column:last_read_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (ConversationState) TableName() string {
	return "conversation_states"
}
