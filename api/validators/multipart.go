package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/placeshare-backend/internal/places"
	"github.com/angelmondragon/placeshare-backend/internal/users"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/placeshare-backend/pkg/errors"
	"github.com/angelmondragon/placeshare-backend/pkg/types"
)

const (
	visitDateLayout   = "2006-01-02"
	formMemoryBytes   = 8 << 20
	formOverheadBytes = 1 << 20
)

// UploadLimits bounds multipart uploads.
type UploadLimits struct {
	MaxFileBytes int64
	MaxFiles     int
}

func (l UploadLimits) requestBytes() int64 {
	files := l.MaxFiles
	if files <= 0 {
		files = 1
	}
	return l.MaxFileBytes*int64(files) + formOverheadBytes
}

// Uploads tracks the files opened while parsing a form. Close releases them
// along with any temp files the multipart reader spilled to disk.
type Uploads struct {
	files []multipart.File
	form  *multipart.Form
}

func (u *Uploads) Close() error {
	if u == nil {
		return nil
	}
	var errs []error
	for _, f := range u.files {
		errs = append(errs, f.Close())
	}
	if u.form != nil {
		errs = append(errs, u.form.RemoveAll())
	}
	return errors.Join(errs...)
}

// placeFields is the raw, partially parsed place payload shared by the
// multipart and JSON paths. Nil means the field was not sent.
type placeFields struct {
	Name         *string
	Description  *string
	Tags         *[]string
	Category     *string
	Rating       *int
	VisitDate    *time.Time
	Address      *string
	Location     *types.GeographyPoint
	IsPublic     *bool
	IsAnonymous  *bool
	Status       *string
	RemovePhotos []string
	Photos       []places.PhotoUpload
}

type placeJSON struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	Category    *string  `json:"category"`
	Rating      *int     `json:"rating"`
	VisitDate   *string  `json:"visitDate"`
	Location    *struct {
		Address     *string    `json:"address"`
		Coordinates *[]float64 `json:"coordinates"`
	} `json:"location"`
	IsPublic     *bool    `json:"isPublic"`
	IsAnonymous  *bool    `json:"isAnonymous"`
	Status       *string  `json:"status"`
	RemovePhotos []string `json:"removePhotos"`
}

// ParsePlaceCreateForm reads a new place from a multipart form or a JSON body.
func ParsePlaceCreateForm(w http.ResponseWriter, r *http.Request, limits UploadLimits) (places.CreateInput, *Uploads, error) {
	fields, uploads, err := parsePlaceFields(w, r, limits)
	if err != nil {
		return places.CreateInput{}, uploads, err
	}
	input := places.CreateInput{
		Rating:    fields.Rating,
		VisitDate: fields.VisitDate,
		IsPublic:  fields.IsPublic,
		Photos:    fields.Photos,
	}
	input.Name = deref(fields.Name)
	input.Description = deref(fields.Description)
	input.Address = deref(fields.Address)
	if fields.Tags != nil {
		input.Tags = *fields.Tags
	}
	if fields.Category != nil {
		input.Category = enums.PlaceCategory(strings.ToLower(strings.TrimSpace(*fields.Category)))
	}
	if fields.Status != nil {
		input.Status = enums.PlaceStatus(strings.ToLower(strings.TrimSpace(*fields.Status)))
	}
	if fields.IsAnonymous != nil {
		input.IsAnonymous = *fields.IsAnonymous
	}
	if fields.Location == nil {
		return places.CreateInput{}, uploads, pkgerrors.New(pkgerrors.CodeValidation, "invalid place").
			WithDetails(map[string]string{"location.coordinates": "is required"})
	}
	input.Location = *fields.Location
	return input, uploads, nil
}

// ParsePlaceUpdateForm reads a partial place update. Absent fields stay nil.
func ParsePlaceUpdateForm(w http.ResponseWriter, r *http.Request, limits UploadLimits) (places.UpdateInput, *Uploads, error) {
	fields, uploads, err := parsePlaceFields(w, r, limits)
	if err != nil {
		return places.UpdateInput{}, uploads, err
	}
	input := places.UpdateInput{
		Name:         fields.Name,
		Description:  fields.Description,
		Tags:         fields.Tags,
		Rating:       fields.Rating,
		VisitDate:    fields.VisitDate,
		Address:      fields.Address,
		Location:     fields.Location,
		IsPublic:     fields.IsPublic,
		IsAnonymous:  fields.IsAnonymous,
		NewPhotos:    fields.Photos,
		RemovePhotos: fields.RemovePhotos,
	}
	if fields.Category != nil {
		category := enums.PlaceCategory(strings.ToLower(strings.TrimSpace(*fields.Category)))
		input.Category = &category
	}
	if fields.Status != nil {
		status := enums.PlaceStatus(strings.ToLower(strings.TrimSpace(*fields.Status)))
		input.Status = &status
	}
	return input, uploads, nil
}

// ParseProfileForm reads a profile update with an optional avatar file.
func ParseProfileForm(w http.ResponseWriter, r *http.Request, limits UploadLimits) (users.ProfileInput, *Uploads, error) {
	var input users.ProfileInput
	if !isMultipart(r) {
		var payload struct {
			FirstName *string `json:"firstName"`
			LastName  *string `json:"lastName"`
			Bio       *string `json:"bio"`
			Location  *string `json:"location"`
		}
		if err := DecodeJSONBody(r, &payload); err != nil {
			return input, nil, err
		}
		input.FirstName = payload.FirstName
		input.LastName = payload.LastName
		input.Bio = payload.Bio
		input.Location = payload.Location
		return input, nil, nil
	}

	limits.MaxFiles = 1
	uploads, err := parseMultipart(w, r, limits)
	if err != nil {
		return input, uploads, err
	}
	values := r.MultipartForm.Value
	input.FirstName = optionalString(values, "firstName")
	input.LastName = optionalString(values, "lastName")
	input.Bio = optionalString(values, "bio")
	input.Location = optionalString(values, "location")

	headers := r.MultipartForm.File["avatar"]
	if len(headers) > 1 {
		return input, uploads, fieldError("avatar", "only one file is allowed")
	}
	if len(headers) == 1 {
		file, err := openImage(headers[0], limits.MaxFileBytes, "avatar")
		if err != nil {
			return input, uploads, err
		}
		uploads.files = append(uploads.files, file)
		input.Avatar = file
	}
	return input, uploads, nil
}

func parsePlaceFields(w http.ResponseWriter, r *http.Request, limits UploadLimits) (placeFields, *Uploads, error) {
	if !isMultipart(r) {
		fields, err := parsePlaceJSON(r)
		return fields, nil, err
	}

	uploads, err := parseMultipart(w, r, limits)
	if err != nil {
		return placeFields{}, uploads, err
	}
	values := url.Values(r.MultipartForm.Value)
	fields := placeFields{
		Name:        optionalString(values, "name"),
		Description: optionalString(values, "description"),
		Category:    optionalString(values, "category"),
		Address:     optionalString(values, "location.address"),
		Status:      optionalString(values, "status"),
	}

	details := map[string]string{}
	if values.Has("tags") {
		tags, err := parseList(values["tags"])
		if err != nil {
			details["tags"] = "must be a list of strings"
		}
		fields.Tags = &tags
	}
	if raw := strings.TrimSpace(values.Get("rating")); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			details["rating"] = "must be a whole number"
		} else {
			fields.Rating = &rating
		}
	}
	if raw := strings.TrimSpace(values.Get("visitDate")); raw != "" {
		visit, err := parseVisitDate(raw)
		if err != nil {
			details["visitDate"] = "must be a date (YYYY-MM-DD)"
		} else {
			fields.VisitDate = &visit
		}
	}
	if values.Has("location.coordinates") {
		point, err := parseCoordinates(values.Get("location.coordinates"))
		if err != nil {
			details["location.coordinates"] = "must be [longitude, latitude]"
		} else {
			fields.Location = &point
		}
	}
	for _, name := range []string{"isPublic", "isAnonymous"} {
		if !values.Has(name) {
			continue
		}
		flag, err := strconv.ParseBool(strings.TrimSpace(values.Get(name)))
		if err != nil {
			details[name] = "must be true or false"
			continue
		}
		if name == "isPublic" {
			fields.IsPublic = &flag
		} else {
			fields.IsAnonymous = &flag
		}
	}
	if values.Has("removePhotos") {
		ids, err := parseList(values["removePhotos"])
		if err != nil {
			details["removePhotos"] = "must be a list of photo ids"
		}
		fields.RemovePhotos = ids
	}

	captions, err := parseList(values["captions"])
	if err != nil {
		details["captions"] = "must be a list of strings"
	}
	headers := r.MultipartForm.File["photos"]
	if limits.MaxFiles > 0 && len(headers) > limits.MaxFiles {
		details["photos"] = fmt.Sprintf("at most %d photos are allowed", limits.MaxFiles)
	}
	if len(details) > 0 {
		return fields, uploads, pkgerrors.New(pkgerrors.CodeValidation, "invalid place").WithDetails(details)
	}

	for i, header := range headers {
		file, err := openImage(header, limits.MaxFileBytes, "photos")
		if err != nil {
			return fields, uploads, err
		}
		uploads.files = append(uploads.files, file)
		upload := places.PhotoUpload{File: file}
		if i < len(captions) && captions[i] != "" {
			caption := captions[i]
			upload.Caption = &caption
		}
		fields.Photos = append(fields.Photos, upload)
	}
	return fields, uploads, nil
}

func parsePlaceJSON(r *http.Request) (placeFields, error) {
	var payload placeJSON
	if err := DecodeJSONBody(r, &payload); err != nil {
		return placeFields{}, err
	}
	fields := placeFields{
		Name:         payload.Name,
		Description:  payload.Description,
		Category:     payload.Category,
		Rating:       payload.Rating,
		IsPublic:     payload.IsPublic,
		IsAnonymous:  payload.IsAnonymous,
		Status:       payload.Status,
		RemovePhotos: payload.RemovePhotos,
	}
	if payload.Tags != nil {
		tags := payload.Tags
		fields.Tags = &tags
	}
	if payload.VisitDate != nil && strings.TrimSpace(*payload.VisitDate) != "" {
		visit, err := parseVisitDate(*payload.VisitDate)
		if err != nil {
			return fields, fieldError("visitDate", "must be a date (YYYY-MM-DD)")
		}
		fields.VisitDate = &visit
	}
	if payload.Location != nil {
		fields.Address = payload.Location.Address
		if payload.Location.Coordinates != nil {
			coords := *payload.Location.Coordinates
			if len(coords) != 2 {
				return fields, fieldError("location.coordinates", "must be [longitude, latitude]")
			}
			fields.Location = &types.GeographyPoint{Lng: coords[0], Lat: coords[1]}
		}
	}
	return fields, nil
}

func parseMultipart(w http.ResponseWriter, r *http.Request, limits UploadLimits) (*Uploads, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.requestBytes())
	if err := r.ParseMultipartForm(formMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return &Uploads{form: r.MultipartForm}, nil
}

func openImage(header *multipart.FileHeader, maxBytes int64, field string) (multipart.File, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, fieldError(field, fmt.Sprintf("each file must be at most %d bytes", maxBytes))
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return nil, fieldError(field, "only image files are allowed")
	}
	file, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload")
	}
	return file, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseList accepts a JSON array, a comma separated string or repeated keys.
func parseList(raw []string) ([]string, error) {
	if len(raw) == 1 {
		value := strings.TrimSpace(raw[0])
		if strings.HasPrefix(value, "[") {
			var out []string
			if err := json.Unmarshal([]byte(value), &out); err != nil {
				return []string{}, err
			}
			return out, nil
		}
		raw = strings.Split(value, ",")
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// parseCoordinates accepts "[lng,lat]" or "lng,lat".
func parseCoordinates(raw string) (types.GeographyPoint, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return types.GeographyPoint{}, fmt.Errorf("expected two coordinates")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.GeographyPoint{}, err
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.GeographyPoint{}, err
	}
	return types.GeographyPoint{Lng: lng, Lat: lat}, nil
}

func parseVisitDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(visitDateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func optionalString(values url.Values, key string) *string {
	if !values.Has(key) {
		return nil
	}
	value := values.Get(key)
	return &value
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: msg})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
