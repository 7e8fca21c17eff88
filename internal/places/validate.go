package places

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/types"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 2000
	maxTagLength         = 30
	maxAddressLength     = 300
	maxCommentLength     = 1000
	maxCaptionLength     = 200
	minRating            = 1
	maxRating            = 5
)

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]string(f))
}

func checkText(errs fieldErrors, field, value string, max int, required bool) {
	value = strings.TrimSpace(value)
	if required && value == "" {
		errs.add(field, "is required")
		return
	}
	if utf8.RuneCountInString(value) > max {
		errs.add(field, "must be at most "+strconv.Itoa(max)+" characters")
	}
}

func checkTags(errs fieldErrors, tags []string) {
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLength {
			errs.add("tags", "each tag must be at most "+strconv.Itoa(maxTagLength)+" characters")
			return
		}
	}
}

func checkRating(errs fieldErrors, rating *int) {
	if rating != nil && (*rating < minRating || *rating > maxRating) {
		errs.add("rating", "must be between 1 and 5")
	}
}

func checkLocation(errs fieldErrors, point types.GeographyPoint) {
	if !point.Valid() {
		errs.add("location.coordinates", "longitude must be within [-180,180] and latitude within [-90,90]")
	}
}

func checkCategory(errs fieldErrors, category enums.PlaceCategory) {
	if category != "" && !category.IsValid() {
		errs.add("category", "is not a supported category")
	}
}

func checkStatus(errs fieldErrors, status enums.PlaceStatus) {
	if status != "" && !status.IsValid() {
		errs.add("status", "must be draft, published or archived")
	}
}

func checkPhotos(errs fieldErrors, photos []PhotoUpload, existing, max int) {
	if max > 0 && existing+len(photos) > max {
		errs.add("photos", "at most "+strconv.Itoa(max)+" photos are allowed")
	}
	for _, photo := range photos {
		if photo.Caption != nil && utf8.RuneCountInString(*photo.Caption) > maxCaptionLength {
			errs.add("photos", "captions must be at most "+strconv.Itoa(maxCaptionLength)+" characters")
			return
		}
	}
}

// normalizeTags trims, lowercases and de-duplicates tags, dropping blanks.
func normalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = normalizeTag(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func validateCreate(input CreateInput, maxPhotos int) error {
	errs := fieldErrors{}
	checkText(errs, "name", input.Name, maxNameLength, true)
	checkText(errs, "description", input.Description, maxDescriptionLength, true)
	checkText(errs, "location.address", input.Address, maxAddressLength, true)
	checkLocation(errs, input.Location)
	checkTags(errs, normalizeTags(input.Tags))
	checkRating(errs, input.Rating)
	checkCategory(errs, input.Category)
	checkStatus(errs, input.Status)
	checkPhotos(errs, input.Photos, 0, maxPhotos)
	return errs.err("invalid place")
}

func validateUpdate(input UpdateInput, existingPhotos, maxPhotos int) error {
	errs := fieldErrors{}
	if input.Name != nil {
		checkText(errs, "name", *input.Name, maxNameLength, true)
	}
	if input.Description != nil {
		checkText(errs, "description", *input.Description, maxDescriptionLength, true)
	}
	if input.Address != nil {
		checkText(errs, "location.address", *input.Address, maxAddressLength, true)
	}
	if input.Location != nil {
		checkLocation(errs, *input.Location)
	}
	if input.Tags != nil {
		checkTags(errs, normalizeTags(*input.Tags))
	}
	checkRating(errs, input.Rating)
	if input.Category != nil {
		checkCategory(errs, *input.Category)
	}
	if input.Status != nil {
		checkStatus(errs, *input.Status)
	}
	checkPhotos(errs, input.NewPhotos, existingPhotos, maxPhotos)
	return errs.err("invalid place")
}

func validateComment(content string) error {
	errs := fieldErrors{}
	checkText(errs, "content", content, maxCommentLength, true)
	return errs.err("invalid comment")
}
