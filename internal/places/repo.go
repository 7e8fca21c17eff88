package places

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
)

// PlaceRow is a place joined with its author display fields and engagement
// counts, as produced by the listing and detail queries.
type PlaceRow struct {
	models.Place    `gorm:"embedded"`
	AuthorFirstName string   `gorm:"column:author_first_name"`
	AuthorLastName  string   `gorm:"column:author_last_name"`
	AuthorAvatarURL *string  `gorm:"column:author_avatar_url"`
	LikesCount      int64    `gorm:"column:likes_count"`
	CommentsCount   int64    `gorm:"column:comments_count"`
	DistanceMeters  *float64 `gorm:"column:distance_meters"`
}

// Repository exposes place persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List runs q and returns one page plus the total for the same predicate.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]PlaceRow, int64, error) {
	var total int64
	if err := q.Filter(r.db.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []PlaceRow{}, 0, nil
	}

	var rows []PlaceRow
	if err := q.SelectPage(r.db.WithContext(ctx)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindRowByID loads a single place with author and counts, regardless of visibility.
func (r *Repository) FindRowByID(ctx context.Context, id uuid.UUID) (*PlaceRow, error) {
	var row PlaceRow
	err := r.db.WithContext(ctx).
		Table("places AS p").
		Select(placeRowColumns+", "+distanceColumn(nil)).
		Joins("JOIN users u ON u.id = p.author_id").
		Where("p.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID loads the bare place.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	var place models.Place
	if err := r.db.WithContext(ctx).First(&place, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

// Create inserts a place.
func (r *Repository) Create(ctx context.Context, place *models.Place) error {
	return r.db.WithContext(ctx).Create(place).Error
}

// UpdateFields writes the provided columns and bumps updated_at.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Place{}).Where("id = ?", id).UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a place. Photos, likes and comments cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Place{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByAuthor removes every place the user authored and reports how many.
func (r *Repository) DeleteByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Place{})
	return res.RowsAffected, res.Error
}

// CountByAuthor counts places regardless of visibility.
func (r *Repository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Place{}).Where("author_id = ?", authorID).Count(&total).Error
	return total, err
}

// IncrementViews bumps the view counter in place.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Place{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// ReplacePhotos swaps the whole photo list of a place.
func (r *Repository) ReplacePhotos(ctx context.Context, placeID uuid.UUID, photos []models.PlacePhoto) error {
	if err := r.db.WithContext(ctx).Where("place_id = ?", placeID).Delete(&models.PlacePhoto{}).Error; err != nil {
		return err
	}
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		photos[i].PlaceID = placeID
		photos[i].Position = i
		if photos[i].ID == uuid.Nil {
			photos[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&photos).Error
}

// ListPhotos returns the ordered photos of every requested place.
func (r *Repository) ListPhotos(ctx context.Context, placeIDs []uuid.UUID) (map[uuid.UUID][]models.PlacePhoto, error) {
	out := make(map[uuid.UUID][]models.PlacePhoto, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}
	var photos []models.PlacePhoto
	if err := r.db.WithContext(ctx).
		Where("place_id IN ?", placeIDs).
		Order("place_id").
		Order("position ASC").
		Find(&photos).Error; err != nil {
		return nil, err
	}
	for _, photo := range photos {
		out[photo.PlaceID] = append(out[photo.PlaceID], photo)
	}
	return out, nil
}

// PhotoPublicIDsByAuthor lists provider ids of every photo on the author's places.
func (r *Repository) PhotoPublicIDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("place_photos AS ph").
		Joins("JOIN places p ON p.id = ph.place_id").
		Where("p.author_id = ?", authorID).
		Pluck("ph.public_id", &ids).Error
	return ids, err
}
