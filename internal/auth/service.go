package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/internal/notifications"
	"github.com/angelmondragon/placeshare-backend/internal/users"
	pkgAuth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/db"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/metrics"
	"github.com/angelmondragon/placeshare-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	invalidTokenMessage       = "invalid or expired token"
	emailTakenMessage         = "email already registered"
	emailUniqueConstraint     = "users_email_key"
	defaultMinPasswordLength  = 6
	signupNoticeTimeout       = 30 * time.Second
)

// Service defines the behavior needed by the auth controller and middleware.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, identity *pkgAuth.Identity) (*users.UserDTO, error)
	ChangePassword(ctx context.Context, identity *pkgAuth.Identity, req ChangePasswordRequest) error
	Authenticate(ctx context.Context, token string) (*pkgAuth.Identity, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Logger         *logger.Logger
	UserRepo       userRepository
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Notifier       notifications.Notifier
	Metrics        *metrics.DomainMetrics
	Now            func() time.Time
}

type service struct {
	logg        *logger.Logger
	users       userRepository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	notifier    notifications.Notifier
	metrics     *metrics.DomainMetrics
	now         func() time.Time
	notices     sync.WaitGroup
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		logg:        params.Logger,
		users:       params.UserRepo,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		notifier:    notifier,
		metrics:     params.Metrics,
		now:         now,
	}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)

	details := map[string]string{}
	if email == "" {
		details["email"] = "is required"
	}
	if first == "" {
		details["firstName"] = "is required"
	}
	if last == "" {
		details["lastName"] = "is required"
	}
	if msg := s.checkPasswordLength(req.Password); msg != "" {
		details["password"] = msg
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid signup").WithDetails(details)
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    first,
		LastName:     last,
	})
	if err != nil {
		if db.IsUniqueViolation(err, emailUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	s.metrics.IncSignup()
	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(logCtx, "user signed up")

	s.dispatchSignupNotice(logCtx, notifications.SignupNotice{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		JoinedAt:  user.CreatedAt,
	})

	return &AuthResponse{Token: token, User: users.FromModel(user)}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{Token: token, User: users.FromModel(user)}, nil
}

func (s *service) Me(ctx context.Context, identity *pkgAuth.Identity) (*users.UserDTO, error) {
	if identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return users.FromModel(user), nil
}

func (s *service) ChangePassword(ctx context.Context, identity *pkgAuth.Identity, req ChangePasswordRequest) error {
	if identity == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	details := map[string]string{}
	if msg := s.checkPasswordLength(req.NewPassword); msg != "" {
		details["newPassword"] = msg
	}
	if req.NewPassword != req.ConfirmPassword {
		details["confirmPassword"] = "does not match new password"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid password change").WithDetails(details)
	}

	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	valid, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "password changed")
	return nil
}

// Authenticate resolves a bearer token to the caller. Every token problem
// yields the same unauthorized error. Role and approval come from the store.
func (s *service) Authenticate(ctx context.Context, token string) (*pkgAuth.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return &pkgAuth.Identity{
		UserID:     user.ID,
		Role:       user.Role,
		IsApproved: user.IsApproved,
	}, nil
}

// dispatchSignupNotice sends the admin notice off the request path. The send
// outlives the request but not signupNoticeTimeout; failures are only logged.
func (s *service) dispatchSignupNotice(ctx context.Context, notice notifications.SignupNotice) {
	s.notices.Add(1)
	go func() {
		defer s.notices.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), signupNoticeTimeout)
		defer cancel()
		if err := s.notifier.NotifySignup(sendCtx, notice); err != nil {
			s.logg.Error(sendCtx, "signup notice failed", err)
		}
	}()
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) checkPasswordLength(password string) string {
	min := s.passwordCfg.MinLength
	if min <= 0 {
		min = defaultMinPasswordLength
	}
	if len(password) < min {
		return fmt.Sprintf("must be at least %d characters", min)
	}
	return ""
}
