package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/cryptox"
	"github.com/dmitrijs2005/filestorage/internal/logging"
	"github.com/dmitrijs2005/filestorage/internal/server/auth"
	"github.com/dmitrijs2005/filestorage/internal/server/config"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/repomanager"
)

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type UserService struct {
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	hashParams                  cryptox.Params
	dummyHash                   string
	logger                      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return NewUserServiceWithParams(m, cfg, logger, cryptox.DefaultParams)
}

// NewUserServiceWithParams is NewUserService with explicit argon2id
// parameters.
func NewUserServiceWithParams(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, p cryptox.Params) *UserService {
	return &UserService{
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		hashParams:                  p,
		dummyHash:                   cryptox.HashPassword(common.GenerateRandByteArray(16), p),
		logger:                      logger,
	}
}

// Register creates an account. The plaintext password never reaches the
// repository; a taken name yields common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", common.ErrInvalidInput)
	}

	plain := []byte(password)
	hash := cryptox.HashPassword(plain, s.hashParams)
	common.WipeByteArray(plain)

	repo := s.repomanager.Users(s.repomanager.Conn())

	user, err := repo.Create(ctx, models.UserCreate{Name: name, Password: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "name", user.Name)
	return user, nil
}

// Authenticate checks the credentials and issues an access token. Unknown
// names and wrong passwords both yield common.ErrUnauthorized; unknown names
// still pay for one hash verification. The name is trimmed as in Register.
func (s *UserService) Authenticate(ctx context.Context, name, password string) (*Token, error) {
	name = strings.TrimSpace(name)
	repo := s.repomanager.Users(s.repomanager.Conn())

	plain := []byte(password)
	defer common.WipeByteArray(plain)

	user, err := repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = cryptox.VerifyPassword(plain, s.dummyHash)
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	ok, err := cryptox.VerifyPassword(plain, user.Password)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unreadable", "name", user.Name, "error", err)
		return nil, common.ErrUnauthorized
	}
	if !ok {
		return nil, common.ErrUnauthorized
	}

	token, expiresAt, err := auth.GenerateToken(user.Name, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return nil, common.ErrInternal
	}

	return &Token{AccessToken: token, TokenType: common.TokenType, ExpiresAt: expiresAt}, nil
}

// ResolveToken returns the user a bearer token was issued to. Every failure
// (bad signature, wrong algorithm, expiry, missing subject, deleted user)
// collapses to common.ErrUnauthorized; storage failures are common.ErrInternal.
func (s *UserService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	name, err := auth.GetSubjectFromToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil, common.ErrUnauthorized
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrInternal
	}
	return user, nil
}
