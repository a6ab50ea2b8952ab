package models

import "time"

// Token is a location-bound QR code worth a fixed number of points.
// The scan engine only reads tokens; configuration changes come from
// the admin API.
type Token struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Label        string    `json:"label"`
	RewardPoints int64     `json:"reward_points"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Active       bool      `json:"active"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}
