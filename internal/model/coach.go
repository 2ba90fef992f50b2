package model

import "time"

type CoachProfile struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Bio           string    `json:"bio,omitempty"`
	Categories    []string  `json:"categories"`
	IsBestseller  bool      `json:"isBestseller"`
	IntroVideoURL string    `json:"introVideoUrl,omitempty"`
	Index         int       `json:"index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
