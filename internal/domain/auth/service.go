package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/logging"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
	Now    func() time.Time
	Logger *zap.Logger
}

func NewService(store StoreAPI, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl, Now: time.Now, Logger: logging.OrNop(logger)}
}

// Login verifies the password and issues a bearer token for the employee.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	cred, err := s.Store.FindCredential(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if cred.PasswordHash == "" || CheckPassword(cred.PasswordHash, password) != nil {
		s.Logger.Info("login rejected", zap.String("employee_id", cred.EmployeeID))
		return LoginResult{}, ErrInvalidCredentials
	}
	actor := Actor{EmployeeID: cred.EmployeeID, Role: cred.Role}
	token, err := GenerateToken(s.Secret, actor, s.TTL, s.Now())
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Actor: actor}, nil
}

// Authenticate turns a bearer token into an actor.
func (s *Service) Authenticate(token string) (Actor, error) {
	claims, err := ParseToken(s.Secret, token)
	if err != nil {
		return Actor{}, err
	}
	return claims.Actor(), nil
}
