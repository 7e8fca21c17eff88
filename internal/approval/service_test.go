package approval

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/internal/users"
	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
	"github.com/angelmondragon/placeshare-backend/pkg/storage"
)

type stubTxRunner struct {
	err error
}

func (s stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubUsers struct {
	users       map[uuid.UUID]*models.User
	approvals   int
	swaps       int
	lastFilter  users.ListFilter
	deleteCalls int
	// afterFind runs once after the next FindByID returns its copy, standing
	// in for another admin acting between read and write.
	afterFind func(u *models.User)
	// beforeWrite runs once before the next guarded write.
	beforeWrite func(u *models.User)
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	if hook := s.afterFind; hook != nil {
		s.afterFind = nil
		hook(u)
	}
	return &copied, nil
}

func (s *stubUsers) interleave(id uuid.UUID) {
	if hook := s.beforeWrite; hook != nil {
		s.beforeWrite = nil
		if u, ok := s.users[id]; ok {
			hook(u)
		}
	}
}

func (s *stubUsers) ApprovePending(_ context.Context, id uuid.UUID) (bool, error) {
	s.interleave(id)
	u, ok := s.users[id]
	if !ok || u.Role != enums.UserRoleUser || u.IsApproved {
		return false, nil
	}
	s.approvals++
	u.IsApproved = true
	return true, nil
}

func (s *stubUsers) SwapRole(_ context.Context, id uuid.UUID, from, to enums.UserRole) (bool, error) {
	s.interleave(id)
	s.swaps++
	u, ok := s.users[id]
	if !ok || u.Role != from {
		return false, nil
	}
	u.Role = to
	u.IsApproved = true
	return true, nil
}

func (s *stubUsers) DeleteMember(_ context.Context, id uuid.UUID) (bool, error) {
	s.interleave(id)
	u, ok := s.users[id]
	if !ok || u.Role != enums.UserRoleUser {
		return false, nil
	}
	s.deleteCalls++
	delete(s.users, id)
	return true, nil
}

func (s *stubUsers) List(_ context.Context, filter users.ListFilter, _ pagination.Params) ([]models.User, int64, error) {
	s.lastFilter = filter
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

type stubCleaner struct {
	places map[uuid.UUID][]string
	err    error
}

func (c *stubCleaner) PhotoPublicIDsByAuthor(_ context.Context, authorID uuid.UUID) ([]string, error) {
	return c.places[authorID], nil
}

func (c *stubCleaner) DeleteByAuthor(_ context.Context, authorID uuid.UUID) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	n := int64(len(c.places[authorID]))
	delete(c.places, authorID)
	return n, nil
}

type recordingMedia struct {
	destroyed []string
	failOn    string
}

func (m *recordingMedia) Upload(context.Context, string, io.Reader) (storage.Asset, error) {
	return storage.Asset{}, storage.ErrDisabled
}

func (m *recordingMedia) Destroy(_ context.Context, publicID string) error {
	if publicID == m.failOn {
		return errors.New("cdn down")
	}
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

type moderationFixture struct {
	svc     Service
	users   *stubUsers
	cleaner *stubCleaner
	media   *recordingMedia
	admin   *pkgauth.Identity
}

func newModerationFixture(t *testing.T, members ...*models.User) moderationFixture {
	t.Helper()
	adminUser := &models.User{ID: uuid.New(), Email: "admin@example.com", Role: enums.UserRoleAdmin}
	store := &stubUsers{users: map[uuid.UUID]*models.User{adminUser.ID: adminUser}}
	for _, m := range members {
		store.users[m.ID] = m
	}
	cleaner := &stubCleaner{places: map[uuid.UUID][]string{}}
	media := &recordingMedia{}

	svc, err := NewService(ServiceParams{
		Logger:        logger.Nop(),
		DB:            stubTxRunner{},
		Users:         store,
		UsersFactory:  func(*gorm.DB) userStore { return store },
		PlacesFactory: func(*gorm.DB) PlaceCleaner { return cleaner },
		Media:         media,
	})
	require.NoError(t, err)
	return moderationFixture{
		svc:     svc,
		users:   store,
		cleaner: cleaner,
		media:   media,
		admin:   &pkgauth.Identity{UserID: adminUser.ID, Role: enums.UserRoleAdmin},
	}
}

func pendingUser() *models.User {
	return &models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Role: enums.UserRoleUser}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Logger: logger.Nop(), DB: stubTxRunner{}, Users: &stubUsers{}})
	require.EqualError(t, err, "places factory required")
}

func TestModerationRequiresAdmin(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)
	member := &pkgauth.Identity{UserID: uuid.New(), Role: enums.UserRoleUser, IsApproved: true}

	_, err := f.svc.Approve(context.Background(), member, target.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	err = f.svc.Reject(context.Background(), nil, target.ID)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestApproveIsIdempotent(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)

	dto, err := f.svc.Approve(context.Background(), f.admin, target.ID)
	require.NoError(t, err)
	assert.True(t, dto.IsApproved)
	assert.Equal(t, enums.ApprovalStateApproved, dto.ApprovalState)

	dto, err = f.svc.Approve(context.Background(), f.admin, target.ID)
	require.NoError(t, err)
	assert.True(t, dto.IsApproved)
	assert.Equal(t, 1, f.users.approvals)

	_, err = f.svc.Approve(context.Background(), f.admin, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestRejectDeletesUserAndAuthoredPlaces(t *testing.T) {
	avatar := "avatars/u1"
	target := pendingUser()
	target.IsApproved = true
	target.AvatarPublicID = &avatar
	f := newModerationFixture(t, target)
	f.cleaner.places[target.ID] = []string{"places/a", "places/b"}

	require.NoError(t, f.svc.Reject(context.Background(), f.admin, target.ID))

	assert.Empty(t, f.cleaner.places[target.ID])
	assert.NotContains(t, f.users.users, target.ID)
	assert.ElementsMatch(t, []string{"places/a", "places/b", "avatars/u1"}, f.media.destroyed)
}

func TestRejectSurvivesMediaFailures(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)
	f.cleaner.places[target.ID] = []string{"places/a", "places/b"}
	f.media.failOn = "places/a"

	require.NoError(t, f.svc.Reject(context.Background(), f.admin, target.ID))
	assert.Equal(t, []string{"places/b"}, f.media.destroyed)
}

func TestRejectRefusesAdmins(t *testing.T) {
	other := &models.User{ID: uuid.New(), Role: enums.UserRoleAdmin}
	f := newModerationFixture(t, other)

	err := f.svc.Reject(context.Background(), f.admin, other.ID)
	assert.Equal(t, pkgerrors.CodeInvalidOperation, pkgerrors.CodeOf(err))
	assert.Contains(t, f.users.users, other.ID)
	assert.Zero(t, f.users.deleteCalls)
}

func TestApproveKeepsConcurrentPromotion(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)
	f.users.beforeWrite = func(u *models.User) {
		u.Role = enums.UserRoleAdmin
	}

	dto, err := f.svc.Approve(context.Background(), f.admin, target.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, f.users.users[target.ID].Role)
	assert.Equal(t, enums.UserRoleAdmin, dto.Role)
	assert.Zero(t, f.users.approvals)
}

func TestApproveLeavesAdminsAlone(t *testing.T) {
	other := &models.User{ID: uuid.New(), Role: enums.UserRoleAdmin}
	f := newModerationFixture(t, other)

	dto, err := f.svc.Approve(context.Background(), f.admin, other.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, dto.Role)
	assert.Zero(t, f.users.approvals)
}

func TestRejectRefusesUserPromotedAfterRead(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)
	f.cleaner.places[target.ID] = []string{"places/a"}
	f.users.afterFind = func(u *models.User) {
		u.Role = enums.UserRoleAdmin
	}

	err := f.svc.Reject(context.Background(), f.admin, target.ID)
	assert.Equal(t, pkgerrors.CodeInvalidOperation, pkgerrors.CodeOf(err))
	assert.Contains(t, f.users.users, target.ID)
	assert.Zero(t, f.users.deleteCalls)
	assert.Empty(t, f.media.destroyed)
}

func TestRejectUserRemovedAfterRead(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)
	f.users.beforeWrite = func(u *models.User) {
		delete(f.users.users, u.ID)
	}

	err := f.svc.Reject(context.Background(), f.admin, target.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	assert.Empty(t, f.media.destroyed)
}

func TestRejectRollsBackOnStoreFailure(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)
	f.cleaner.places[target.ID] = []string{"places/a"}
	f.cleaner.err = errors.New("db down")

	err := f.svc.Reject(context.Background(), f.admin, target.ID)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.Contains(t, f.users.users, target.ID)
	assert.Empty(t, f.media.destroyed)
}

func TestToggleAdmin(t *testing.T) {
	target := pendingUser()
	target.IsApproved = true
	f := newModerationFixture(t, target)

	dto, err := f.svc.ToggleAdmin(context.Background(), f.admin, target.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, dto.Role)

	dto, err = f.svc.ToggleAdmin(context.Background(), f.admin, target.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleUser, dto.Role)
	assert.True(t, dto.IsApproved, "demoted admins stay approved")

	_, err = f.svc.ToggleAdmin(context.Background(), f.admin, f.admin.UserID)
	assert.Equal(t, pkgerrors.CodeInvalidOperation, pkgerrors.CodeOf(err))
}

func TestToggleAdminAppliesToStoredRole(t *testing.T) {
	target := pendingUser()
	target.IsApproved = true
	f := newModerationFixture(t, target)
	// another admin promotes the target right after the first read
	f.users.afterFind = func(u *models.User) {
		u.Role = enums.UserRoleAdmin
	}

	dto, err := f.svc.ToggleAdmin(context.Background(), f.admin, target.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleUser, dto.Role)
	assert.Equal(t, enums.UserRoleUser, f.users.users[target.ID].Role)
	assert.Equal(t, 2, f.users.swaps)
}

func TestToggleAdminGivesUpUnderContention(t *testing.T) {
	target := pendingUser()
	f := newModerationFixture(t, target)
	store := f.users
	var flip func(u *models.User)
	flip = func(u *models.User) {
		if u.Role == enums.UserRoleAdmin {
			u.Role = enums.UserRoleUser
		} else {
			u.Role = enums.UserRoleAdmin
		}
		store.afterFind = flip
	}
	store.afterFind = flip

	_, err := f.svc.ToggleAdmin(context.Background(), f.admin, target.ID)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, toggleAttempts, store.swaps)
}

func TestListUsersStatusFilter(t *testing.T) {
	f := newModerationFixture(t, pendingUser())

	res, err := f.svc.ListUsers(context.Background(), f.admin, ListQuery{Status: "Pending", Search: " ana "})
	require.NoError(t, err)
	require.NotNil(t, f.users.lastFilter.State)
	assert.Equal(t, enums.ApprovalStatePending, *f.users.lastFilter.State)
	assert.Equal(t, "ana", f.users.lastFilter.Search)
	assert.Len(t, res.Users, 2)
	assert.EqualValues(t, 2, res.Pagination.Total)

	_, err = f.svc.ListUsers(context.Background(), f.admin, ListQuery{Status: "all"})
	require.NoError(t, err)
	assert.Nil(t, f.users.lastFilter.State)

	_, err = f.svc.ListUsers(context.Background(), f.admin, ListQuery{Status: "banned"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
