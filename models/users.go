package models

import (
	"time"
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type UserToken struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"index:user_token_idx,unique" json:"user_id"`
	Token  string `gorm:"size:255;index:user_token_idx,unique" json:"token"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}

type Migration struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:60;uniqueIndex" json:"name"`
	AppliedAt time.Time `gorm:"autoCreateTime" json:"applied_at"`
}
