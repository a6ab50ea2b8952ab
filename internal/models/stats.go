package models

type Stats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalPointsHeld   int64 `json:"total_points_held"`
	TotalPointsEarned int64 `json:"total_points_earned"`
	TotalPointsSpent  int64 `json:"total_points_spent"`
	ActiveTokens      int64 `json:"active_tokens"`
	ActivePrizes      int64 `json:"active_prizes"`
}
