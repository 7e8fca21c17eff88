package enums

import (
	"fmt"
	"strings"
)

// PlaceCategory classifies a shared place.
type PlaceCategory string

const (
	PlaceCategoryRestaurant PlaceCategory = "restaurant"
	PlaceCategoryCafe       PlaceCategory = "cafe"
	PlaceCategoryBar        PlaceCategory = "bar"
	PlaceCategoryPark       PlaceCategory = "park"
	PlaceCategoryMuseum     PlaceCategory = "museum"
	PlaceCategoryBeach      PlaceCategory = "beach"
	PlaceCategoryViewpoint  PlaceCategory = "viewpoint"
	PlaceCategoryShopping   PlaceCategory = "shopping"
	PlaceCategoryNightlife  PlaceCategory = "nightlife"
	PlaceCategoryHotel      PlaceCategory = "hotel"
	PlaceCategoryLandmark   PlaceCategory = "landmark"
	PlaceCategoryOther      PlaceCategory = "other"
)

// PlaceCategoryAll is the listing sentinel meaning "no category filter".
const PlaceCategoryAll = "all"

var validPlaceCategories = []PlaceCategory{
	PlaceCategoryRestaurant,
	PlaceCategoryCafe,
	PlaceCategoryBar,
	PlaceCategoryPark,
	PlaceCategoryMuseum,
	PlaceCategoryBeach,
	PlaceCategoryViewpoint,
	PlaceCategoryShopping,
	PlaceCategoryNightlife,
	PlaceCategoryHotel,
	PlaceCategoryLandmark,
	PlaceCategoryOther,
}

// PlaceCategories returns every known category.
func PlaceCategories() []PlaceCategory {
	out := make([]PlaceCategory, len(validPlaceCategories))
	copy(out, validPlaceCategories)
	return out
}

// String implements fmt.Stringer.
func (c PlaceCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known PlaceCategory.
func (c PlaceCategory) IsValid() bool {
	for _, candidate := range validPlaceCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParsePlaceCategory converts raw input into a PlaceCategory.
func ParsePlaceCategory(value string) (PlaceCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPlaceCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid place category %q", value)
}
