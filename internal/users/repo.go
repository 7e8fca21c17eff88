package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash stores a new credential hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()}).Error
}

// UpdateProfile writes the non-nil profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error {
	cols := update.columns()
	if len(cols) == 0 {
		return nil
	}
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetApproval sets role and approval flag in one statement.
func (r *Repository) SetApproval(ctx context.Context, id uuid.UUID, role enums.UserRole, isApproved bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"role":        role,
			"is_approved": isApproved,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApprovePending flips is_approved for a pending member. Admins and already
// approved users are left untouched; the role column is never written.
func (r *Repository) ApprovePending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ? AND is_approved = ?", id, enums.UserRoleUser, false).
		UpdateColumns(map[string]any{
			"is_approved": true,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SwapRole moves a user from one role to another only while the stored role
// still equals from. The user ends up approved either way.
func (r *Repository) SwapRole(ctx context.Context, id uuid.UUID, from, to enums.UserRole) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, from).
		UpdateColumns(map[string]any{
			"role":        to,
			"is_approved": true,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteMember removes a non-admin user row. Authored places, likes and
// comments cascade. It reports false when no member row matched.
func (r *Repository) DeleteMember(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, enums.UserRoleUser).
		Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdjustPlacesCount moves the denormalized counter by delta without a
// read-modify-write. The counter never drops below zero.
func (r *Repository) AdjustPlacesCount(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	expr := gorm.Expr("places_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN places_count >= ? THEN places_count - ? ELSE 0 END", -delta, -delta)
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("places_count", expr).Error
}

// List returns one page of users matching filter, newest first, plus the
// total computed from the same predicate.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.User, int64, error) {
	params = params.Normalize()
	scope := func(db *gorm.DB) *gorm.DB {
		return applyListFilter(db.Model(&models.User{}), filter)
	}

	var total int64
	if err := scope(r.db.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
	if err := scope(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyListFilter(db *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.State != nil {
		switch *filter.State {
		case enums.ApprovalStatePending:
			db = db.Where("role = ? AND is_approved = ?", enums.UserRoleUser, false)
		case enums.ApprovalStateApproved:
			db = db.Where("role = ? AND is_approved = ?", enums.UserRoleUser, true)
		case enums.ApprovalStateAdmin:
			db = db.Where("role = ?", enums.UserRoleAdmin)
		}
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		like := "%" + term + "%"
		db = db.Where("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR email LIKE ?)", like, like, like)
	}
	return db
}
