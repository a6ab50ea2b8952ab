package models

import "time"

type Prize struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	PointsRequired int64     `json:"points_required"`
	Stock          int64     `json:"stock"`
	ImageURL       string    `json:"image_url"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}
