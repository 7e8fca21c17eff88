package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/internal/approval"
	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/metrics"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
	"github.com/angelmondragon/placeshare-backend/pkg/storage"
	"github.com/angelmondragon/placeshare-backend/pkg/types"
	"github.com/angelmondragon/placeshare-backend/pkg/visibility"
)

// RecentPlacesLimit caps the places shown on a public profile.
const RecentPlacesLimit = 6

// Service exposes place browsing, authoring and engagement.
type Service interface {
	List(ctx context.Context, viewer *pkgauth.Identity, q ListQuery) (*ListResult, error)
	ListMine(ctx context.Context, viewer *pkgauth.Identity, q ListQuery) (*ListResult, error)
	ListRecentByAuthor(ctx context.Context, viewer *pkgauth.Identity, authorID uuid.UUID) ([]PlaceDTO, error)
	Get(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) (*PlaceDTO, error)
	Create(ctx context.Context, viewer *pkgauth.Identity, input CreateInput) (*PlaceDTO, error)
	Update(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID, input UpdateInput) (*PlaceDTO, error)
	Delete(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) error
	ToggleLike(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) (*LikeResult, error)
	AddComment(ctx context.Context, viewer *pkgauth.Identity, placeID uuid.UUID, input CommentInput) (*CommentDTO, error)
	DeleteComment(ctx context.Context, viewer *pkgauth.Identity, placeID, commentID uuid.UUID) error
	ListCommentsByAuthor(ctx context.Context, viewer *pkgauth.Identity, params pagination.Params) (*CommentListResult, error)
}

// PhotoUpload is one image received from a multipart form.
type PhotoUpload struct {
	File    io.Reader
	Caption *string
}

// CreateInput holds the payload for a new place.
type CreateInput struct {
	Name        string
	Description string
	Tags        []string
	Category    enums.PlaceCategory
	Rating      *int
	VisitDate   *time.Time
	Address     string
	Location    types.GeographyPoint
	IsPublic    *bool
	IsAnonymous bool
	Status      enums.PlaceStatus
	Photos      []PhotoUpload
}

// UpdateInput holds optional changes. Nil fields are left untouched.
// NewPhotos are appended to the kept photos and RemovePhotos names provider
// ids to drop; the resulting list replaces the old one whole.
type UpdateInput struct {
	Name         *string
	Description  *string
	Tags         *[]string
	Category     *enums.PlaceCategory
	Rating       *int
	VisitDate    *time.Time
	Address      *string
	Location     *types.GeographyPoint
	IsPublic     *bool
	IsAnonymous  *bool
	Status       *enums.PlaceStatus
	NewPhotos    []PhotoUpload
	RemovePhotos []string
}

func (u UpdateInput) touchesPhotos() bool {
	return len(u.NewPhotos) > 0 || len(u.RemovePhotos) > 0
}

// CommentInput is the payload for a new comment.
type CommentInput struct {
	Content     string
	IsAnonymous bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type placeStore interface {
	List(ctx context.Context, q ListQuery) ([]PlaceRow, int64, error)
	FindRowByID(ctx context.Context, id uuid.UUID) (*PlaceRow, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
	Create(ctx context.Context, place *models.Place) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	ReplacePhotos(ctx context.Context, placeID uuid.UUID, photos []models.PlacePhoto) error
	ListPhotos(ctx context.Context, placeIDs []uuid.UUID) (map[uuid.UUID][]models.PlacePhoto, error)
	ToggleLike(ctx context.Context, placeID, userID uuid.UUID) (bool, int64, error)
	LikedPlaceIDs(ctx context.Context, userID uuid.UUID, placeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CreateComment(ctx context.Context, comment *models.PlaceComment) error
	FindComment(ctx context.Context, id uuid.UUID) (*models.PlaceComment, error)
	FindCommentRow(ctx context.Context, id uuid.UUID) (*CommentRow, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	ListComments(ctx context.Context, placeID uuid.UUID) ([]CommentRow, error)
	ListCommentsByAuthor(ctx context.Context, authorID uuid.UUID, params pagination.Params) ([]CommentRow, int64, error)
}

// AuthorCounter moves the denormalized places counter of a user.
type AuthorCounter interface {
	AdjustPlacesCount(ctx context.Context, userID uuid.UUID, delta int) error
}

type placeStoreFactory func(tx *gorm.DB) placeStore

// AuthorCounterFactory binds an AuthorCounter to a transaction.
type AuthorCounterFactory func(tx *gorm.DB) AuthorCounter

func defaultPlaceStore(tx *gorm.DB) placeStore {
	return NewRepository(tx)
}

// ServiceParams wires the places service.
type ServiceParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repo          placeStore
	RepoFactory   placeStoreFactory
	AuthorCounter AuthorCounterFactory
	Media         storage.MediaStore
	Metrics       *metrics.DomainMetrics
	PhotoFolder   string
	MaxPhotos     int
}

type service struct {
	logg        *logger.Logger
	db          txRunner
	repo        placeStore
	repoFactory placeStoreFactory
	counterFor  AuthorCounterFactory
	media       storage.MediaStore
	metrics     *metrics.DomainMetrics
	folder      string
	maxPhotos   int
}

// NewService validates params and builds the places service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("places repository required")
	}
	if params.AuthorCounter == nil {
		return nil, fmt.Errorf("author counter factory required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultPlaceStore
	}
	media := params.Media
	if media == nil {
		media = storage.Disabled{}
	}
	return &service{
		logg:        params.Logger,
		db:          params.DB,
		repo:        params.Repo,
		repoFactory: repoFactory,
		counterFor:  params.AuthorCounter,
		media:       media,
		metrics:     params.Metrics,
		folder:      params.PhotoFolder,
		maxPhotos:   params.MaxPhotos,
	}, nil
}

func (s *service) List(ctx context.Context, viewer *pkgauth.Identity, q ListQuery) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list places")
	}
	items, err := s.hydrate(ctx, viewer, rows)
	if err != nil {
		return nil, err
	}
	return &ListResult{Places: items, Pagination: pagination.NewMeta(q.Page, total)}, nil
}

// ListMine lists the viewer's own places, drafts and private ones included.
func (s *service) ListMine(ctx context.Context, viewer *pkgauth.Identity, q ListQuery) (*ListResult, error) {
	if viewer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	authorID := viewer.UserID
	q.AuthorID = &authorID
	q.VisibleOnly = false
	return s.List(ctx, viewer, q)
}

func (s *service) ListRecentByAuthor(ctx context.Context, viewer *pkgauth.Identity, authorID uuid.UUID) ([]PlaceDTO, error) {
	q := ListQuery{
		Page:        pagination.Params{Page: 1, Limit: RecentPlacesLimit},
		AuthorID:    &authorID,
		SortBy:      SortByCreatedAt,
		SortOrder:   SortDesc,
		VisibleOnly: true,
	}
	result, err := s.List(ctx, viewer, q)
	if err != nil {
		return nil, err
	}
	return result.Places, nil
}

func (s *service) hydrate(ctx context.Context, viewer *pkgauth.Identity, rows []PlaceRow) ([]PlaceDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	photos, err := s.repo.ListPhotos(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load place photos")
	}
	liked := map[uuid.UUID]bool{}
	if viewer != nil && len(ids) > 0 {
		if liked, err = s.repo.LikedPlaceIDs(ctx, viewer.UserID, ids); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load likes")
		}
	}
	out := make([]PlaceDTO, 0, len(rows))
	for _, row := range rows {
		dto := NewPlaceDTO(row, photos[row.ID], viewer)
		dto.IsLiked = liked[row.ID]
		out = append(out, dto)
	}
	return out, nil
}

// Get returns a place with its comments and counts the view. Hidden places
// look absent to everyone but their owner and admins.
func (s *service) Get(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) (*PlaceDTO, error) {
	row, err := s.loadVisibleRow(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment views")
	}
	row.Views++
	return s.detail(ctx, viewer, *row)
}

func (s *service) loadVisibleRow(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) (*PlaceRow, error) {
	row, err := s.repo.FindRowByID(ctx, id)
	if err != nil {
		return nil, placeLookupError(err)
	}
	if err := visibility.EnsurePlaceVisible(visibility.PlaceVisibilityInput{Place: &row.Place, Viewer: viewer}); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) detail(ctx context.Context, viewer *pkgauth.Identity, row PlaceRow) (*PlaceDTO, error) {
	items, err := s.hydrate(ctx, viewer, []PlaceRow{row})
	if err != nil {
		return nil, err
	}
	dto := items[0]

	comments, err := s.repo.ListComments(ctx, row.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comments")
	}
	dto.Comments = make([]CommentDTO, 0, len(comments))
	for _, comment := range comments {
		dto.Comments = append(dto.Comments, NewCommentDTO(comment, viewer))
	}
	return &dto, nil
}

func (s *service) reload(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) (*PlaceDTO, error) {
	row, err := s.repo.FindRowByID(ctx, id)
	if err != nil {
		return nil, placeLookupError(err)
	}
	return s.detail(ctx, viewer, *row)
}

func (s *service) Create(ctx context.Context, viewer *pkgauth.Identity, input CreateInput) (*PlaceDTO, error) {
	if err := approval.EnsureCanCreateContent(viewer); err != nil {
		return nil, err
	}
	if err := validateCreate(input, s.maxPhotos); err != nil {
		return nil, err
	}

	place := &models.Place{
		ID:          uuid.New(),
		AuthorID:    viewer.UserID,
		IsAnonymous: input.IsAnonymous,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Tags:        pq.StringArray(normalizeTags(input.Tags)),
		Category:    input.Category,
		Rating:      toRating(input.Rating),
		VisitDate:   toDate(input.VisitDate),
		Address:     strings.TrimSpace(input.Address),
		Location:    input.Location,
		IsPublic:    true,
		Status:      input.Status,
	}
	if place.Category == "" {
		place.Category = enums.PlaceCategoryOther
	}
	if place.Status == "" {
		place.Status = enums.PlaceStatusPublished
	}
	if input.IsPublic != nil {
		place.IsPublic = *input.IsPublic
	}

	photos, err := s.uploadPhotos(ctx, input.Photos)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repoFactory(tx)
		if err := txRepo.Create(ctx, place); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert place")
		}
		if err := txRepo.ReplacePhotos(ctx, place.ID, photos); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert photos")
		}
		if err := s.counterFor(tx).AdjustPlacesCount(ctx, place.AuthorID, 1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment places count")
		}
		return nil
	}); err != nil {
		s.destroyAssets(ctx, publicIDs(photos))
		return nil, asServiceError(err, "create place")
	}

	ctx = s.logg.WithPlaceID(ctx, place.ID.String())
	s.logg.Info(ctx, "place created")
	return s.reload(ctx, viewer, place.ID)
}

func (s *service) Update(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID, input UpdateInput) (*PlaceDTO, error) {
	if viewer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	place, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, placeLookupError(err)
	}
	if !viewer.CanManage(place.AuthorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin can edit this place")
	}
	if err := approval.EnsureCanCreateContent(viewer); err != nil {
		return nil, err
	}

	var kept, removed []models.PlacePhoto
	if input.touchesPhotos() {
		current, err := s.repo.ListPhotos(ctx, []uuid.UUID{id})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load place photos")
		}
		kept, removed = splitPhotos(current[id], input.RemovePhotos)
	}
	if err := validateUpdate(input, len(kept), s.maxPhotos); err != nil {
		return nil, err
	}

	updates := updateColumns(input)
	uploaded, err := s.uploadPhotos(ctx, input.NewPhotos)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repoFactory(tx)
		if len(updates) > 0 {
			if err := txRepo.UpdateFields(ctx, id, updates); err != nil {
				return err
			}
		}
		if input.touchesPhotos() {
			next := make([]models.PlacePhoto, 0, len(kept)+len(uploaded))
			for _, photo := range kept {
				next = append(next, models.PlacePhoto{URL: photo.URL, PublicID: photo.PublicID, Caption: photo.Caption})
			}
			next = append(next, uploaded...)
			if err := txRepo.ReplacePhotos(ctx, id, next); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace photos")
			}
		}
		return nil
	}); err != nil {
		s.destroyAssets(ctx, publicIDs(uploaded))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, asServiceError(err, "update place")
	}

	s.destroyAssets(ctx, publicIDs(removed))
	return s.reload(ctx, viewer, id)
}

func (s *service) Delete(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) error {
	if viewer == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	place, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return placeLookupError(err)
	}
	if !viewer.CanManage(place.AuthorID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin can delete this place")
	}
	if err := approval.EnsureCanCreateContent(viewer); err != nil {
		return err
	}

	photos, err := s.repo.ListPhotos(ctx, []uuid.UUID{id})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load place photos")
	}

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repoFactory(tx).Delete(ctx, id); err != nil {
			return err
		}
		if err := s.counterFor(tx).AdjustPlacesCount(ctx, place.AuthorID, -1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement places count")
		}
		return nil
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return asServiceError(err, "delete place")
	}

	s.destroyAssets(ctx, publicIDs(photos[id]))
	return nil
}

func (s *service) ToggleLike(ctx context.Context, viewer *pkgauth.Identity, id uuid.UUID) (*LikeResult, error) {
	if viewer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.loadVisibleRow(ctx, viewer, id); err != nil {
		return nil, err
	}
	liked, count, err := s.repo.ToggleLike(ctx, id, viewer.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle like")
	}
	s.metrics.IncLikeToggle(liked)
	return &LikeResult{IsLiked: liked, LikesCount: count}, nil
}

func (s *service) AddComment(ctx context.Context, viewer *pkgauth.Identity, placeID uuid.UUID, input CommentInput) (*CommentDTO, error) {
	if viewer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validateComment(input.Content); err != nil {
		return nil, err
	}
	if _, err := s.loadVisibleRow(ctx, viewer, placeID); err != nil {
		return nil, err
	}

	comment := &models.PlaceComment{
		ID:          uuid.New(),
		PlaceID:     placeID,
		AuthorID:    viewer.UserID,
		Content:     strings.TrimSpace(input.Content),
		IsAnonymous: input.IsAnonymous,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert comment")
	}
	row, err := s.repo.FindCommentRow(ctx, comment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comment")
	}
	dto := NewCommentDTO(*row, viewer)
	return &dto, nil
}

func (s *service) DeleteComment(ctx context.Context, viewer *pkgauth.Identity, placeID, commentID uuid.UUID) error {
	if viewer == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	comment, err := s.repo.FindComment(ctx, commentID)
	if err != nil {
		return commentLookupError(err)
	}
	if comment.PlaceID != placeID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	if !viewer.CanManage(comment.AuthorID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the comment author or an admin can delete this comment")
	}
	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		return commentLookupError(err)
	}
	return nil
}

func (s *service) ListCommentsByAuthor(ctx context.Context, viewer *pkgauth.Identity, params pagination.Params) (*CommentListResult, error) {
	if viewer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	params = params.Normalize()
	rows, total, err := s.repo.ListCommentsByAuthor(ctx, viewer.UserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	out := make([]CommentDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewCommentDTO(row, viewer))
	}
	return &CommentListResult{Comments: out, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) uploadPhotos(ctx context.Context, uploads []PhotoUpload) ([]models.PlacePhoto, error) {
	photos := make([]models.PlacePhoto, 0, len(uploads))
	for _, upload := range uploads {
		asset, err := s.media.Upload(ctx, s.folder, upload.File)
		if err != nil {
			s.destroyAssets(ctx, publicIDs(photos))
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload photo")
		}
		photos = append(photos, models.PlacePhoto{
			URL:      asset.URL,
			PublicID: asset.PublicID,
			Caption:  trimmedOrNil(upload.Caption),
		})
	}
	return photos, nil
}

// destroyAssets removes provider objects best-effort; failures are logged
// and counted but never returned.
func (s *service) destroyAssets(ctx context.Context, ids []string) {
	var errs error
	failed := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := s.media.Destroy(ctx, id); err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("destroy %s: %w", id, err))
		}
	}
	if errs != nil {
		s.metrics.AddPhotoCleanupFailures(failed)
		s.logg.Error(s.logg.WithField(ctx, "failed", failed), "photo cleanup incomplete", errs)
	}
}

func splitPhotos(current []models.PlacePhoto, remove []string) (kept, removed []models.PlacePhoto) {
	drop := make(map[string]struct{}, len(remove))
	for _, id := range remove {
		drop[strings.TrimSpace(id)] = struct{}{}
	}
	for _, photo := range current {
		if _, ok := drop[photo.PublicID]; ok {
			removed = append(removed, photo)
			continue
		}
		kept = append(kept, photo)
	}
	return kept, removed
}

func updateColumns(input UpdateInput) map[string]any {
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(normalizeTags(*input.Tags))
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Rating != nil {
		updates["rating"] = toRating(input.Rating)
	}
	if input.VisitDate != nil {
		updates["visit_date"] = toDate(input.VisitDate)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}
	if input.IsAnonymous != nil {
		updates["is_anonymous"] = *input.IsAnonymous
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	return updates
}

func publicIDs(photos []models.PlacePhoto) []string {
	ids := make([]string, 0, len(photos))
	for _, photo := range photos {
		ids = append(ids, photo.PublicID)
	}
	return ids
}

func toRating(rating *int) *int16 {
	if rating == nil {
		return nil
	}
	v := int16(*rating)
	return &v
}

func toDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func placeLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load place")
}

func commentLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comment")
}

func asServiceError(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
