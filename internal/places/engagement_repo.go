package places

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
)

// CommentRow is a comment with its author display fields and place name.
type CommentRow struct {
	models.PlaceComment `gorm:"embedded"`
	AuthorFirstName     string  `gorm:"column:author_first_name"`
	AuthorLastName      string  `gorm:"column:author_last_name"`
	AuthorAvatarURL     *string `gorm:"column:author_avatar_url"`
	PlaceName           string  `gorm:"column:place_name"`
}

const commentRowColumns = `c.id, c.place_id, c.author_id, c.content, c.is_anonymous, c.created_at,
u.first_name AS author_first_name, u.last_name AS author_last_name, u.avatar_url AS author_avatar_url,
p.name AS place_name`

// ToggleLike removes the viewer's like if present, otherwise adds it. The
// composite key on (place_id, user_id) keeps concurrent toggles from
// producing a duplicate entry.
func (r *Repository) ToggleLike(ctx context.Context, placeID, userID uuid.UUID) (bool, int64, error) {
	db := r.db.WithContext(ctx)

	res := db.Where("place_id = ? AND user_id = ?", placeID, userID).Delete(&models.PlaceLike{})
	if res.Error != nil {
		return false, 0, res.Error
	}

	liked := false
	if res.RowsAffected == 0 {
		like := models.PlaceLike{PlaceID: placeID, UserID: userID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return false, 0, err
		}
		liked = true
	}

	count, err := r.CountLikes(ctx, placeID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// CountLikes counts likes on a place.
func (r *Repository) CountLikes(ctx context.Context, placeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PlaceLike{}).Where("place_id = ?", placeID).Count(&count).Error
	return count, err
}

// LikedPlaceIDs reports which of placeIDs the user has liked.
func (r *Repository) LikedPlaceIDs(ctx context.Context, userID uuid.UUID, placeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}
	var liked []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.PlaceLike{}).
		Where("user_id = ? AND place_id IN ?", userID, placeIDs).
		Pluck("place_id", &liked).Error; err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// CreateComment appends a comment.
func (r *Repository) CreateComment(ctx context.Context, comment *models.PlaceComment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindComment loads a comment by id.
func (r *Repository) FindComment(ctx context.Context, id uuid.UUID) (*models.PlaceComment, error) {
	var comment models.PlaceComment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment by id.
func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PlaceComment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) commentRows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("place_comments AS c").
		Joins("JOIN users u ON u.id = c.author_id").
		Joins("JOIN places p ON p.id = c.place_id")
}

// ListComments returns a place's comments, newest first.
func (r *Repository) ListComments(ctx context.Context, placeID uuid.UUID) ([]CommentRow, error) {
	var rows []CommentRow
	err := r.commentRows(ctx).
		Select(commentRowColumns).
		Where("c.place_id = ?", placeID).
		Order("c.created_at DESC").
		Order("c.id DESC").
		Find(&rows).Error
	return rows, err
}

// ListCommentsByAuthor pages through the comments a user wrote, newest first.
func (r *Repository) ListCommentsByAuthor(ctx context.Context, authorID uuid.UUID, params pagination.Params) ([]CommentRow, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.PlaceComment{}).
		Where("author_id = ?", authorID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []CommentRow
	if err := r.commentRows(ctx).
		Select(commentRowColumns).
		Where("c.author_id = ?", authorID).
		Order("c.created_at DESC").
		Order("c.id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindCommentRow loads one comment with its author and place name.
func (r *Repository) FindCommentRow(ctx context.Context, id uuid.UUID) (*CommentRow, error) {
	var row CommentRow
	if err := r.commentRows(ctx).
		Select(commentRowColumns).
		Where("c.id = ?", id).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
