package enums

import (
	"fmt"
	"strings"
)

// PlaceStatus is the publication state of a place.
type PlaceStatus string

const (
	PlaceStatusDraft     PlaceStatus = "draft"
	PlaceStatusPublished PlaceStatus = "published"
	PlaceStatusArchived  PlaceStatus = "archived"
)

var validPlaceStatuses = []PlaceStatus{
	PlaceStatusDraft,
	PlaceStatusPublished,
	PlaceStatusArchived,
}

// String implements fmt.Stringer.
func (s PlaceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PlaceStatus.
func (s PlaceStatus) IsValid() bool {
	for _, candidate := range validPlaceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePlaceStatus converts raw input into a PlaceStatus.
func ParsePlaceStatus(value string) (PlaceStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPlaceStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid place status %q", value)
}
