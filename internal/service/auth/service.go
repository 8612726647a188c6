package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cinematch/cinematch/internal/app"
	"github.com/cinematch/cinematch/internal/db"
	svcErr "github.com/cinematch/cinematch/internal/errors"
	"github.com/cinematch/cinematch/internal/repository"
	"github.com/cinematch/cinematch/internal/server"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is the public shape of an account (never carries the hash).
type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Service implements registration and login.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	tokenTTL time.Duration
}

// NewService creates the auth service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, tokenTTL time.Duration) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		tokenTTL: tokenTTL,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" || email == "" || password == "" {
		return nil, svcErr.BadRequest("name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, svcErr.BadRequest("invalid email address")
	}
	if len(password) < 6 {
		return nil, svcErr.BadRequest("password must be at least 6 characters")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, svcErr.Conflict("email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Map(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, svcErr.Internal("failed to hash password")
	}

	user := db.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		s.appCtx.Logger.Error("failed to create user", "err", err)
		return nil, svcErr.Internal("could not create user")
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID)
	return &User{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// do not reveal whether the account exists
		return "", nil, svcErr.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, svcErr.Unauthorized("invalid credentials")
	}

	token, err := server.IssueToken(user.ID, s.tokenTTL)
	if err != nil {
		s.appCtx.Logger.Error("failed to issue token", "user_id", user.ID, "err", err)
		return "", nil, svcErr.Internal("could not issue token")
	}

	return token, &User{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}
