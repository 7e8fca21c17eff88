package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/storage"
)

const (
	maxNameLength     = 50
	maxBioLength      = 500
	maxLocationLength = 100
)

// Service exposes self-service profile operations.
type Service interface {
	GetMe(ctx context.Context, viewer *pkgauth.Identity) (*UserDTO, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*PublicUserDTO, error)
	UpdateProfile(ctx context.Context, viewer *pkgauth.Identity, input ProfileInput) (*UserDTO, error)
}

// ProfileInput is the multipart profile form. Nil fields are unchanged.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Location  *string
	Avatar    io.Reader
}

type profileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error
}

// ServiceParams wires the users service.
type ServiceParams struct {
	Logger       *logger.Logger
	Repo         profileStore
	Media        storage.MediaStore
	AvatarFolder string
}

type service struct {
	logg   *logger.Logger
	repo   profileStore
	media  storage.MediaStore
	folder string
}

// NewService builds the users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	media := params.Media
	if media == nil {
		media = storage.Disabled{}
	}
	return &service{
		logg:   params.Logger,
		repo:   params.Repo,
		media:  media,
		folder: params.AvatarFolder,
	}, nil
}

func (s *service) GetMe(ctx context.Context, viewer *pkgauth.Identity) (*UserDTO, error) {
	if viewer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.repo.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, lookupError(err)
	}
	return FromModel(user), nil
}

func (s *service) GetPublic(ctx context.Context, id uuid.UUID) (*PublicUserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return PublicFromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, viewer *pkgauth.Identity, input ProfileInput) (*UserDTO, error) {
	if viewer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	update, err := validateProfile(input)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, lookupError(err)
	}

	var uploaded *storage.Asset
	if input.Avatar != nil {
		asset, err := s.media.Upload(ctx, s.folder, input.Avatar)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload avatar")
		}
		uploaded = &asset
		update.AvatarURL = &asset.URL
		update.AvatarPublicID = &asset.PublicID
	}

	if !update.IsEmpty() {
		if err := s.repo.UpdateProfile(ctx, viewer.UserID, update); err != nil {
			if uploaded != nil {
				s.destroyAvatar(ctx, uploaded.PublicID)
			}
			return nil, lookupError(err)
		}
	}

	if uploaded != nil && current.AvatarPublicID != nil {
		s.destroyAvatar(ctx, *current.AvatarPublicID)
	}

	return s.GetMe(ctx, viewer)
}

func (s *service) destroyAvatar(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.media.Destroy(ctx, publicID); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "public_id", publicID), "avatar cleanup failed", err)
	}
}

func validateProfile(input ProfileInput) (ProfileUpdate, error) {
	details := map[string]string{}
	update := ProfileUpdate{}

	trimmed := func(field string, value *string, max int, required bool) *string {
		if value == nil {
			return nil
		}
		v := strings.TrimSpace(*value)
		switch {
		case required && v == "":
			details[field] = "cannot be empty"
		case utf8.RuneCountInString(v) > max:
			details[field] = fmt.Sprintf("must be at most %d characters", max)
		}
		return &v
	}

	update.FirstName = trimmed("firstName", input.FirstName, maxNameLength, true)
	update.LastName = trimmed("lastName", input.LastName, maxNameLength, true)
	update.Bio = trimmed("bio", input.Bio, maxBioLength, false)
	update.Location = trimmed("location", input.Location, maxLocationLength, false)

	if len(details) > 0 {
		return ProfileUpdate{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid profile").WithDetails(details)
	}
	return update, nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
}
