package visibility

import (
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
)

// PublicPlaces restricts a places query to rows anyone may see. alias names
// the places table in the query.
func PublicPlaces(alias string) func(*gorm.DB) *gorm.DB {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(prefix+"is_public = ? AND "+prefix+"status = ?", true, enums.PlaceStatusPublished)
	}
}

// PlaceVisibilityInput drives the single-place check.
type PlaceVisibilityInput struct {
	Place  *models.Place
	Viewer *pkgauth.Identity
}

// EnsurePlaceVisible makes hidden places look absent. Owners and admins
// always see them; everyone else gets the same NotFound as a missing id.
func EnsurePlaceVisible(input PlaceVisibilityInput) error {
	if input.Place == nil {
		return notFound()
	}
	if input.Place.IsVisible() || input.Viewer.CanManage(input.Place.AuthorID) {
		return nil
	}
	return notFound()
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
}
