package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/owenshen0907/NihonGO/internal/data/repos"
	"github.com/owenshen0907/NihonGO/internal/domain"
	"github.com/owenshen0907/NihonGO/internal/platform/apierr"
	"github.com/owenshen0907/NihonGO/internal/platform/casdoor"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
)

const defaultAccountLevel = 1

// SessionClaims is the JWT payload of a logged-in session.
type SessionClaims struct {
	UserID   string `json:"uid"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// HandleCallback finishes the OAuth dance: code -> token -> account,
	// upserts the local user and returns a signed session token.
	HandleCallback(ctx context.Context, code string) (token string, user *domain.User, err error)

	ParseSessionToken(token string) (*SessionClaims, error)

	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type authService struct {
	log        *logger.Logger
	casdoor    casdoor.Client
	userRepo   repos.UserRepo
	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewAuthService(log *logger.Logger, cd casdoor.Client, userRepo repos.UserRepo, jwtSecret string, sessionTTL time.Duration) AuthService {
	return &authService{
		log:        log.With("service", "AuthService"),
		casdoor:    cd,
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

func (s *authService) HandleCallback(ctx context.Context, code string) (string, *domain.User, error) {
	if code == "" {
		return "", nil, apierr.New(http.StatusBadRequest, "missing_code", fmt.Errorf("missing oauth code"))
	}

	accessToken, err := s.casdoor.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, apierr.New(http.StatusUnauthorized, "oauth_exchange_failed", err)
	}
	account, err := s.casdoor.GetAccount(ctx, accessToken)
	if err != nil {
		return "", nil, apierr.New(http.StatusUnauthorized, "account_fetch_failed", err)
	}

	user := &domain.User{
		UserID:       account.Name,
		Nickname:     account.DisplayName,
		Phone:        account.Phone,
		Email:        account.Email,
		WeChat:       account.WeChat,
		AccountLevel: defaultAccountLevel,
	}
	if user.Nickname == "" {
		user.Nickname = account.Name
	}
	if err := s.userRepo.UpsertIgnore(ctx, nil, user); err != nil {
		return "", nil, fmt.Errorf("user upsert: %w", err)
	}

	token, err := s.signSession(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	s.log.Info("User logged in", "user_id", user.UserID)
	return token, user, nil
}

func (s *authService) signSession(user *domain.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   user.UserID,
		Nickname: user.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *authService) ParseSessionToken(token string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("user %s not found", userID))
	}
	return user, nil
}
