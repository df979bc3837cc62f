package auth

import (
	"context"
	"errors"
	"time"

	autherrors "go-hrpayroll/internal/auth/errors"
	"go-hrpayroll/internal/shared/contextutil"
	"go-hrpayroll/internal/shared/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer is satisfied by *token.Issuer.
type TokenIssuer interface {
	Pair(userID, employeeID, role string) (access, refresh string, err error)
	Parse(raw, wantType string) (*token.Claims, error)
	AccessTTL() time.Duration
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error)
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
	logger *zap.Logger
}

func NewService(repo Repository, tokens TokenIssuer, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, tokens: tokens, logger: l}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.String("request_id", rid), zap.Error(err))
			return TokenResponse{}, err
		}
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("request_id", rid), zap.String("user_id", user.ID.String()))
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	resp, err := s.issue(user)
	if err != nil {
		s.logger.Error("login issue token failed", zap.String("request_id", rid), zap.Error(err))
		return TokenResponse{}, err
	}

	s.logger.Info("login success", zap.String("request_id", rid), zap.String("user_id", user.ID.String()))
	return resp, nil
}

// RefreshToken reloads the user so a role change takes effect on the next
// refresh.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenResponse{}, autherrors.ErrUserNotFound
		}
		return TokenResponse{}, err
	}

	return s.issue(user)
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, err
	}
	return mapToResponse(u), nil
}

func (s *service) issue(user *User) (TokenResponse, error) {
	resp := mapToResponse(user)
	access, refresh, err := s.tokens.Pair(resp.ID, resp.EmployeeID, resp.Role)
	if err != nil {
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}
	return TokenResponse{
		User:         resp,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
