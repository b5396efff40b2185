package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var ErrRefreshRevoked = errors.New("refresh token revoked")

// Service issues tokens and tracks live refresh tokens in Redis so they can
// be rotated and revoked.
type Service struct {
	jwt         *JWTManager
	redisClient redis.Cmdable
}

func NewService(jwt *JWTManager, redisClient redis.Cmdable) *Service {
	return &Service{
		jwt:         jwt,
		redisClient: redisClient,
	}
}

func refreshKey(userID, tokenID string) string {
	return fmt.Sprintf("refresh:%s:%s", userID, tokenID)
}

func (s *Service) GenerateTokens(ctx context.Context, userID, email string) (*TokenPair, error) {
	pair, tokenID, err := s.jwt.GenerateTokenPair(userID, email)
	if err != nil {
		return nil, err
	}

	if err := s.redisClient.Set(ctx, refreshKey(userID, tokenID), "1", s.jwt.RefreshExpiry()).Err(); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return pair, nil
}

// RefreshTokens rotates a refresh token: the presented one is consumed and a
// new pair is issued.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	deleted, err := s.redisClient.Del(ctx, refreshKey(claims.UserID, claims.TokenID)).Result()
	if err != nil {
		return nil, fmt.Errorf("consuming refresh token: %w", err)
	}
	if deleted == 0 {
		return nil, ErrRefreshRevoked
	}

	return s.GenerateTokens(ctx, claims.UserID, claims.Email)
}

// Logout revokes every refresh token of the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	iter := s.redisClient.Scan(ctx, 0, refreshKey(userID, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("revoking refresh token: %w", err)
		}
	}
	return iter.Err()
}

func (s *Service) ValidateAccessToken(token string) (*AccessClaims, error) {
	return s.jwt.ValidateAccessToken(token)
}

func (s *Service) JWT() *JWTManager {
	return s.jwt
}
