package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stamprally/backend/internal/models"
	repo "github.com/stamprally/backend/internal/repository"
	"github.com/stamprally/backend/internal/worker"
)

// TokenService is the admin surface for QR tokens. The scan engine only
// ever reads tokens; all configuration changes go through here.
type TokenService struct {
	tokens repo.Tokens
	audits repo.AuditLogs
	wp     *worker.Pool
}

func NewTokenService(tokens repo.Tokens, audits repo.AuditLogs, wp *worker.Pool) *TokenService {
	return &TokenService{tokens: tokens, audits: audits, wp: wp}
}

type TokenWithImage struct {
	models.Token
	QRImage string `json:"qr_image"`
}

const qrImageSize = 300

func qrDataURL(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func (s *TokenService) Create(ctx context.Context, createdBy, label string, points int64, lat, lng float64) (TokenWithImage, error) {
	if points <= 0 {
		return TokenWithImage{}, errors.New("reward points must be > 0")
	}
	if label == "" {
		label = fmt.Sprintf("QR-%dpt", points)
	}
	t, err := s.tokens.Create(ctx, models.Token{
		Code:         uuid.NewString(),
		Label:        label,
		RewardPoints: points,
		Lat:          lat,
		Lng:          lng,
		Active:       true,
		CreatedBy:    createdBy,
	})
	if err != nil {
		return TokenWithImage{}, err
	}
	img, err := qrDataURL(t.Code)
	if err != nil {
		return TokenWithImage{}, err
	}
	s.audit(t.ID, "created", map[string]any{"label": t.Label, "points": t.RewardPoints})
	return TokenWithImage{Token: t, QRImage: img}, nil
}

func (s *TokenService) List(ctx context.Context) ([]TokenWithImage, error) {
	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TokenWithImage, 0, len(tokens))
	for _, t := range tokens {
		img, err := qrDataURL(t.Code)
		if err != nil {
			return nil, err
		}
		out = append(out, TokenWithImage{Token: t, QRImage: img})
	}
	return out, nil
}

func (s *TokenService) Toggle(ctx context.Context, id string) (models.Token, error) {
	t, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return models.Token{}, err
	}
	updated, err := s.tokens.SetActive(ctx, id, !t.Active)
	if err != nil {
		return models.Token{}, err
	}
	s.audit(id, "toggled", map[string]any{"active": updated.Active})
	return updated, nil
}

func (s *TokenService) Relocate(ctx context.Context, id string, lat, lng float64) (models.Token, error) {
	t, err := s.tokens.SetAnchor(ctx, id, lat, lng)
	if err != nil {
		return models.Token{}, err
	}
	s.audit(id, "relocated", map[string]any{"lat": lat, "lng": lng})
	return t, nil
}

func (s *TokenService) Delete(ctx context.Context, id string) error {
	if err := s.tokens.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(id, "deleted", nil)
	return nil
}

func (s *TokenService) audit(entityID, action string, details map[string]any) {
	id := entityID
	s.wp.Submit(func() {
		_ = s.audits.Create(context.Background(), models.AuditLog{
			EntityType: "token",
			EntityID:   &id,
			Action:     action,
			Details:    details,
		})
	})
}
