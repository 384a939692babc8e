package models

import "time"

type User struct {
	ID        uint   `gorm:"primary_key"`
	Username  string `gorm:"unique;not null"`
	Email     string `gorm:"unique"`
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Post struct {
	ID        uint   `gorm:"primary_key"`
	Title     string `gorm:"size:100;not null"`
	Content   string `gorm:"type:text"`
	UserID    uint   `gorm:"index;not null"`
	Upvotes   int    `gorm:"not null;default:0"`
	Downvotes int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Comment struct {
	ID        uint   `gorm:"primary_key"`
	Content   string `gorm:"type:text;not null"`
	PostID    uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	ParentID  *uint  `gorm:"index"`
	Depth     int    `gorm:"not null;default:0"`
	MaxDepth  int    `gorm:"not null"`
	Upvotes   int    `gorm:"not null;default:0"`
	Downvotes int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reaction хранит цель как пару (тип, id): уникальность (автор, цель) разбита по типу цели
type Reaction struct {
	ID         uint   `gorm:"primary_key"`
	UserID     uint   `gorm:"not null"`
	TargetKind string `gorm:"size:16;not null"`
	TargetID   uint   `gorm:"not null"`
	Polarity   int    `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
