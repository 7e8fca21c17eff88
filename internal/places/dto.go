package places

import (
	"math"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
)

const visitDateLayout = "2006-01-02"

// LocationDTO carries the address and the [lng, lat] pair.
type LocationDTO struct {
	Address     string     `json:"address"`
	Coordinates [2]float64 `json:"coordinates"`
}

// PhotoDTO is a hosted photo reference.
type PhotoDTO struct {
	URL      string  `json:"url"`
	PublicID string  `json:"publicId"`
	Caption  *string `json:"caption,omitempty"`
}

// AuthorDTO is the denormalized author display block.
type AuthorDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Avatar    *string   `json:"avatar"`
}

// PlaceDTO is the transport shape of a place.
type PlaceDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Tags          []string            `json:"tags"`
	Category      enums.PlaceCategory `json:"category"`
	Rating        *int16              `json:"rating"`
	VisitDate     *string             `json:"visitDate"`
	Location      LocationDTO         `json:"location"`
	Photos        []PhotoDTO          `json:"photos"`
	Author        *AuthorDTO          `json:"author"`
	IsAnonymous   bool                `json:"isAnonymous"`
	IsPublic      bool                `json:"isPublic"`
	Status        enums.PlaceStatus   `json:"status"`
	Views         int64               `json:"views"`
	LikesCount    int64               `json:"likesCount"`
	IsLiked       bool                `json:"isLiked"`
	CommentsCount int64               `json:"commentsCount"`
	Comments      []CommentDTO        `json:"comments,omitempty"`
	DistanceKm    *float64            `json:"distanceKm,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// CommentDTO is the transport shape of a comment.
type CommentDTO struct {
	ID          uuid.UUID  `json:"id"`
	PlaceID     uuid.UUID  `json:"placeId"`
	PlaceName   string     `json:"placeName,omitempty"`
	Content     string     `json:"content"`
	IsAnonymous bool       `json:"isAnonymous"`
	Author      *AuthorDTO `json:"author"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ListResult is one page of places.
type ListResult struct {
	Places     []PlaceDTO      `json:"places"`
	Pagination pagination.Meta `json:"pagination"`
}

// CommentListResult is one page of comments.
type CommentListResult struct {
	Comments   []CommentDTO    `json:"comments"`
	Pagination pagination.Meta `json:"pagination"`
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	IsLiked    bool  `json:"isLiked"`
	LikesCount int64 `json:"likesCount"`
}

// NewPlaceDTO maps a row for the viewer. Anonymous places hide their author
// from everyone but the owner and admins.
func NewPlaceDTO(row PlaceRow, photos []models.PlacePhoto, viewer *pkgauth.Identity) PlaceDTO {
	tags := []string(row.Tags)
	if tags == nil {
		tags = []string{}
	}
	dto := PlaceDTO{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Tags:        tags,
		Category:    row.Category,
		Rating:      row.Rating,
		Location: LocationDTO{
			Address:     row.Address,
			Coordinates: row.Location.Coordinates(),
		},
		Photos:        make([]PhotoDTO, 0, len(photos)),
		IsAnonymous:   row.IsAnonymous,
		IsPublic:      row.IsPublic,
		Status:        row.Status,
		Views:         row.Views,
		LikesCount:    row.LikesCount,
		CommentsCount: row.CommentsCount,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.VisitDate != nil {
		formatted := row.VisitDate.Format(visitDateLayout)
		dto.VisitDate = &formatted
	}
	for _, photo := range photos {
		dto.Photos = append(dto.Photos, PhotoDTO{URL: photo.URL, PublicID: photo.PublicID, Caption: photo.Caption})
	}
	if !row.IsAnonymous || viewer.CanManage(row.AuthorID) {
		dto.Author = &AuthorDTO{
			ID:        row.AuthorID,
			FirstName: row.AuthorFirstName,
			LastName:  row.AuthorLastName,
			Avatar:    row.AuthorAvatarURL,
		}
	}
	if row.DistanceMeters != nil {
		km := math.Round(*row.DistanceMeters) / 1000
		dto.DistanceKm = &km
	}
	return dto
}

// NewCommentDTO maps a comment row for the viewer.
func NewCommentDTO(row CommentRow, viewer *pkgauth.Identity) CommentDTO {
	dto := CommentDTO{
		ID:          row.ID,
		PlaceID:     row.PlaceID,
		PlaceName:   row.PlaceName,
		Content:     row.Content,
		IsAnonymous: row.IsAnonymous,
		CreatedAt:   row.CreatedAt,
	}
	if !row.IsAnonymous || viewer.CanManage(row.AuthorID) {
		dto.Author = &AuthorDTO{
			ID:        row.AuthorID,
			FirstName: row.AuthorFirstName,
			LastName:  row.AuthorLastName,
			Avatar:    row.AuthorAvatarURL,
		}
	}
	return dto
}
