package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/internal/users"
	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/metrics"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
	"github.com/angelmondragon/placeshare-backend/pkg/storage"
)

// Service implements the admin moderation transitions.
type Service interface {
	ListUsers(ctx context.Context, actor *pkgauth.Identity, query ListQuery) (*UserListResult, error)
	Approve(ctx context.Context, actor *pkgauth.Identity, userID uuid.UUID) (*users.UserDTO, error)
	Reject(ctx context.Context, actor *pkgauth.Identity, userID uuid.UUID) error
	ToggleAdmin(ctx context.Context, actor *pkgauth.Identity, userID uuid.UUID) (*users.UserDTO, error)
}

// ListQuery filters the moderation listing. Status is pending, approved,
// admin or all.
type ListQuery struct {
	Status string
	Search string
	Page   pagination.Params
}

// UserListResult is one page of users for the admin console.
type UserListResult struct {
	Users      []users.UserDTO `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ApprovePending(ctx context.Context, id uuid.UUID) (bool, error)
	SwapRole(ctx context.Context, id uuid.UUID, from, to enums.UserRole) (bool, error)
	DeleteMember(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter users.ListFilter, params pagination.Params) ([]models.User, int64, error)
}

// PlaceCleaner removes everything a rejected user authored.
type PlaceCleaner interface {
	PhotoPublicIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]string, error)
	DeleteByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

// PlaceCleanerFactory binds a PlaceCleaner to a transaction.
type PlaceCleanerFactory func(tx *gorm.DB) PlaceCleaner

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userStoreFactory func(tx *gorm.DB) userStore

// ServiceParams wires the moderation service.
type ServiceParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Users         userStore
	UsersFactory  userStoreFactory
	PlacesFactory PlaceCleanerFactory
	Media         storage.MediaStore
	Metrics       *metrics.DomainMetrics
}

type service struct {
	logg          *logger.Logger
	db            txRunner
	users         userStore
	usersFactory  userStoreFactory
	placesFactory PlaceCleanerFactory
	media         storage.MediaStore
	metrics       *metrics.DomainMetrics
}

// NewService validates params and builds the moderation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.PlacesFactory == nil {
		return nil, fmt.Errorf("places factory required")
	}
	factory := params.UsersFactory
	if factory == nil {
		factory = func(tx *gorm.DB) userStore { return users.NewRepository(tx) }
	}
	media := params.Media
	if media == nil {
		media = storage.Disabled{}
	}
	return &service{
		logg:          params.Logger,
		db:            params.DB,
		users:         params.Users,
		usersFactory:  factory,
		placesFactory: params.PlacesFactory,
		media:         media,
		metrics:       params.Metrics,
	}, nil
}

func (s *service) ListUsers(ctx context.Context, actor *pkgauth.Identity, query ListQuery) (*UserListResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	filter := users.ListFilter{Search: strings.TrimSpace(query.Search)}
	status := strings.ToLower(strings.TrimSpace(query.Status))
	if status != "" && status != enums.ApprovalStateAll {
		state, err := enums.ParseApprovalState(status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be pending, approved, admin or all")
		}
		filter.State = &state
	}

	params := query.Page.Normalize()
	rows, total, err := s.users.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	out := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return &UserListResult{Users: out, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) Approve(ctx context.Context, actor *pkgauth.Identity, userID uuid.UUID) (*users.UserDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	// admins are implicitly approved; the guarded update skips them
	changed, err := s.users.ApprovePending(ctx, userID)
	if err != nil {
		return nil, lookupError(err)
	}
	target, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.IncModeration(metrics.ModerationApprove)
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"target_user_id": target.ID.String(), "actor_id": actor.UserID.String()}), "user approved")
	}
	return users.FromModel(target), nil
}

var errNotRejectable = errors.New("user is not a rejectable member")

func (s *service) Reject(ctx context.Context, actor *pkgauth.Identity, userID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	target, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == enums.UserRoleAdmin {
		return adminRejectError()
	}

	var (
		publicIDs []string
		removed   int64
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		places := s.placesFactory(tx)
		ids, err := places.PhotoPublicIDsByAuthor(ctx, target.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load photo ids")
		}
		publicIDs = ids

		removed, err = places.DeleteByAuthor(ctx, target.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete authored places")
		}
		// the role guard rolls the place deletion back if the user was
		// promoted or removed after the read above
		deleted, err := s.usersFactory(tx).DeleteMember(ctx, target.ID)
		if err != nil {
			return lookupError(err)
		}
		if !deleted {
			return errNotRejectable
		}
		return nil
	})
	if errors.Is(err, errNotRejectable) {
		return s.rejectRefusal(ctx, target.ID)
	}
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject user")
	}

	if target.AvatarPublicID != nil && *target.AvatarPublicID != "" {
		publicIDs = append(publicIDs, *target.AvatarPublicID)
	}
	s.destroyAssets(ctx, publicIDs)

	s.metrics.IncModeration(metrics.ModerationReject)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"target_user_id": target.ID.String(),
		"actor_id":       actor.UserID.String(),
		"places_removed": removed,
	}), "user rejected")
	return nil
}

// rejectRefusal explains a guarded delete that matched no member row.
func (s *service) rejectRefusal(ctx context.Context, id uuid.UUID) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if current.Role == enums.UserRoleAdmin {
		return adminRejectError()
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "user changed during rejection, try again")
}

func adminRejectError() error {
	return pkgerrors.New(pkgerrors.CodeInvalidOperation, "admins cannot be rejected")
}

const toggleAttempts = 3

func (s *service) ToggleAdmin(ctx context.Context, actor *pkgauth.Identity, userID uuid.UUID) (*users.UserDTO, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if actor.UserID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidOperation, "you cannot change your own admin role")
	}

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		target, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		role := enums.UserRoleAdmin
		if target.Role == enums.UserRoleAdmin {
			role = enums.UserRoleUser
		}

		// promotion and demotion both leave the user approved
		swapped, err := s.users.SwapRole(ctx, target.ID, target.Role, role)
		if err != nil {
			return nil, lookupError(err)
		}
		if !swapped {
			continue
		}
		target.Role = role
		target.IsApproved = true

		s.metrics.IncModeration(metrics.ModerationToggleAdmin)
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"target_user_id": target.ID.String(),
			"actor_id":       actor.UserID.String(),
			"role":           role.String(),
		}), "user role changed")
		return users.FromModel(target), nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "user role changed concurrently, try again")
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return user, nil
}

func (s *service) destroyAssets(ctx context.Context, publicIDs []string) {
	var errs error
	failed := 0
	for _, id := range publicIDs {
		if err := s.media.Destroy(ctx, id); err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	if errs != nil {
		s.metrics.AddPhotoCleanupFailures(failed)
		s.logg.Error(s.logg.WithField(ctx, "failed", failed), "media cleanup after rejection failed", errs)
	}
}

func requireAdmin(actor *pkgauth.Identity) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: user")
}
