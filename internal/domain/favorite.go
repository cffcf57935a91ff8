package domain

import "time"

// UserFavoriteMovie links a user to a movie they favorited. One row per pair.
type UserFavoriteMovie struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:uq_favorite_user_movie,priority:1"`
	MovieID   int64     `json:"movie_id" gorm:"not null;index;uniqueIndex:uq_favorite_user_movie,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Movie *Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (UserFavoriteMovie) TableName() string {
	return "user_favorite_movies"
}
