package domain

import "time"

// Review is one free-text review per (movie, user). Its score lives in the
// paired Rating row.
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	MovieID   int64     `json:"movie_id" gorm:"not null;uniqueIndex:uq_review_movie_user,priority:1;index"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:uq_review_movie_user,priority:2;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Movie *Movie `json:"-" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Review) TableName() string {
	return "reviews"
}
