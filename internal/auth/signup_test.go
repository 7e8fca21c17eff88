package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/placeshare-backend/internal/notifications"
	"github.com/angelmondragon/placeshare-backend/internal/users"
	pkgAuth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/config"
	pkgmodels "github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/security"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "placeshare",
	ExpirationMinutes: 43200,
}

type stubUserRepository struct {
	byEmail   map[string]*pkgmodels.User
	byID      map[uuid.UUID]*pkgmodels.User
	created   *pkgmodels.User
	createErr error
	findErr   error
	newHash   string
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		byEmail: map[string]*pkgmodels.User{},
		byID:    map[uuid.UUID]*pkgmodels.User{},
	}
}

func (s *stubUserRepository) add(user *pkgmodels.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.byEmail[dto.Email]; ok {
		return nil, errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)
	}
	user := dto.ToModel()
	user.CreatedAt = time.Now().UTC()
	s.add(user)
	s.created = user
	return user, nil
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*pkgmodels.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*pkgmodels.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := s.byID[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (s *stubUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.newHash = hash
	if user, ok := s.byID[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

type recordingNotifier struct {
	notices []notifications.SignupNotice
	err     error
}

func (r *recordingNotifier) NotifySignup(ctx context.Context, notice notifications.SignupNotice) error {
	r.notices = append(r.notices, notice)
	return r.err
}

// waitForNotices blocks until every signup notice dispatched so far is done.
func waitForNotices(t *testing.T, svc Service) {
	t.Helper()
	impl, ok := svc.(*service)
	if !ok {
		t.Fatalf("unexpected service type %T", svc)
	}
	impl.notices.Wait()
}

type blockingNotifier struct {
	release  chan struct{}
	deadline chan bool
}

func (b *blockingNotifier) NotifySignup(ctx context.Context, notice notifications.SignupNotice) error {
	_, ok := ctx.Deadline()
	b.deadline <- ok
	<-b.release
	return nil
}

func newTestService(t *testing.T, repo *stubUserRepository, notifier notifications.Notifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:    logger.Nop(),
		UserRepo:  repo,
		JWTConfig: testJWTConfig,
		Notifier:  notifier,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func sampleSignup(email string) SignupRequest {
	return SignupRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     email,
		Password:  "Secret123!",
	}
}

func TestSignupCreatesPendingUser(t *testing.T) {
	repo := newStubUserRepository()
	notifier := &recordingNotifier{}
	svc := newTestService(t, repo, notifier)

	resp, err := svc.Signup(context.Background(), sampleSignup("  A@B.com "))
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if repo.created == nil || repo.created.Email != "a@b.com" {
		t.Fatalf("expected lower-cased email to be stored, got %+v", repo.created)
	}
	if resp.User.IsApproved || resp.User.ApprovalState != enums.ApprovalStatePending {
		t.Fatalf("expected pending user, got %+v", resp.User)
	}
	if resp.User.Role != enums.UserRoleUser {
		t.Fatalf("expected user role, got %s", resp.User.Role)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != repo.created.ID {
		t.Fatalf("token subject mismatch")
	}
	waitForNotices(t, svc)
	if len(notifier.notices) != 1 || notifier.notices[0].Email != "a@b.com" {
		t.Fatalf("expected one signup notice, got %+v", notifier.notices)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepository()
	svc := newTestService(t, repo, nil)

	if _, err := svc.Signup(context.Background(), sampleSignup("dup@example.com")); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(context.Background(), sampleSignup("DUP@example.com"))
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if pkgerrors.MetadataFor(pkgerrors.CodeConflict).HTTPStatus != 400 {
		t.Fatalf("duplicate email must map to 400")
	}
}

func TestSignupValidatesInput(t *testing.T) {
	svc := newTestService(t, newStubUserRepository(), nil)

	req := sampleSignup("short@example.com")
	req.Password = "12345"
	req.FirstName = " "
	_, err := svc.Signup(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["password"] == "" || details["firstName"] == "" {
		t.Fatalf("expected per-field details, got %#v", typed.Details())
	}
}

func TestSignupSurvivesNotifierFailure(t *testing.T) {
	repo := newStubUserRepository()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := newTestService(t, repo, notifier)

	if _, err := svc.Signup(context.Background(), sampleSignup("notice@example.com")); err != nil {
		t.Fatalf("signup must not fail on notifier errors: %v", err)
	}
	waitForNotices(t, svc)
	if len(notifier.notices) != 1 {
		t.Fatalf("expected notifier to be called")
	}
}

func TestSignupDoesNotWaitForNotice(t *testing.T) {
	notifier := &blockingNotifier{release: make(chan struct{}), deadline: make(chan bool, 1)}
	svc := newTestService(t, newStubUserRepository(), notifier)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.Signup(ctx, sampleSignup("slow@example.com")); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	// the request is over; the notice must keep its own deadline
	cancel()
	select {
	case hasDeadline := <-notifier.deadline:
		if !hasDeadline {
			t.Fatalf("expected the notice context to carry a timeout")
		}
	case <-time.After(time.Second):
		t.Fatalf("notice was never dispatched")
	}
	close(notifier.release)
	waitForNotices(t, svc)
}

func TestSignupStorageFailureIsDependencyError(t *testing.T) {
	repo := newStubUserRepository()
	repo.createErr = errors.New("connection refused")
	svc := newTestService(t, repo, nil)

	_, err := svc.Signup(context.Background(), sampleSignup("down@example.com"))
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}
