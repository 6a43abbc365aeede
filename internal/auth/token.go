package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const defaultTokenTTL = 24 * time.Hour

type playerClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs the player identity into the session cookie.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(secretKey string) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		ttl:       defaultTokenTTL,
		now:       time.Now,
	}
}

func (that *TokenService) TTL() time.Duration {
	return that.ttl
}

func (that *TokenService) Generate(player entity.Player) (string, error) {
	now := that.now()

	claims := playerClaims{
		Name:  player.Name,
		Email: player.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   player.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(that.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (that *TokenService) Parse(tokenString string) (*entity.Player, error) {
	claims := &playerClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return that.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(that.now))
	if err != nil {
		return nil, errors.Join(apperror.ErrUnauthenticated, err)
	}

	player := &entity.Player{Name: claims.Name, Email: claims.Email}
	if player.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}

	return player, nil
}
