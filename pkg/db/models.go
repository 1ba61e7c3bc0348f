// pkg/db/models.go
package db

import (
	"time"
)

// User is keyed by email. Registration is self-service: a user may only
// create the row matching their authenticated identity.
type User struct {
	Email string `gorm:"primaryKey;size:320" json:"email"`
}

type Wordset struct {
	WordsetID   uint   `gorm:"primaryKey" json:"wordset_id"`
	Description string `gorm:"size:1024;not null" json:"description"`
}

type Word struct {
	WordID    uint   `gorm:"primaryKey" json:"word_id"`
	Word      string `gorm:"size:256;not null" json:"word"`
	WordsetID uint   `gorm:"index;not null" json:"wordset_id"`
	Def1      string `gorm:"size:1024" json:"def1"`
	Def2      string `gorm:"size:1024" json:"def2"`
}

// UserWord tracks a user's inclusion and recall progress for a word.
type UserWord struct {
	UserID      string `gorm:"primaryKey;size:320" json:"user_id"` // references users.email
	WordID      uint   `gorm:"primaryKey" json:"word_id"`
	IsIncluded  bool   `gorm:"not null;default:true" json:"is_included"`
	RecallState int    `gorm:"not null;default:0" json:"recall_state"`
}

type RecallHistory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index;size:320;not null" json:"user_id"`
	WordID         uint      `gorm:"index;not null" json:"word_id"`
	IsIncluded     bool      `gorm:"not null;default:true" json:"is_included"`
	OldRecallState int       `gorm:"not null;default:0" json:"old_recall_state"`
	NewRecallState int       `gorm:"not null;default:0" json:"new_recall_state"`
	RecallTime     time.Time `gorm:"not null" json:"recall_time"`
}

func (RecallHistory) TableName() string {
	return "recall_history"
}
