package models

import (
	"errors"
	"strings"
	"time"
)

type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	Balance      int64     `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) Validate() error {
	if len(strings.TrimSpace(a.Username)) < 3 {
		return errors.New("username too short")
	}
	if strings.TrimSpace(a.DisplayName) == "" {
		return errors.New("display name required")
	}
	if a.Role == "" {
		a.Role = "user"
	}
	return nil
}
