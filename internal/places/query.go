package places

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/placeshare-backend/pkg/auth"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
	"github.com/angelmondragon/placeshare-backend/pkg/visibility"
)

const (
	DefaultRadiusKm = 10.0
	// MaxRadiusKm is roughly half the earth's circumference.
	MaxRadiusKm = 20037.5

	SortByCreatedAt = "createdAt"
	SortByName      = "name"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

var sortColumns = map[string]string{
	SortByCreatedAt: "p.created_at",
	SortByName:      "p.name",
}

// GeoFilter restricts results to a radius around a point.
type GeoFilter struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// RadiusMeters converts the km radius for ST_DWithin.
func (g GeoFilter) RadiusMeters() float64 {
	return g.RadiusKm * 1000
}

// ListQuery is the normalized listing request. Every field is already
// validated; build one with ParseListQuery or by hand in services.
type ListQuery struct {
	Page        pagination.Params
	Search      string
	Category    *enums.PlaceCategory
	AuthorID    *uuid.UUID
	Tag         string
	Geo         *GeoFilter
	SortBy      string
	SortOrder   string
	VisibleOnly bool
}

// ParseListQuery turns raw query parameters into a ListQuery. Bad values
// never fail: page/limit are clamped, unknown enums fall back to defaults,
// and a malformed or out-of-range lat/lng disables the geo filter.
func ParseListQuery(values url.Values, viewer *pkgauth.Identity, defaultRadiusKm float64) ListQuery {
	q := ListQuery{
		Page:      pagination.ParseParams(values.Get("page"), values.Get("limit")),
		Search:    strings.TrimSpace(values.Get("search")),
		Tag:       normalizeTag(values.Get("tag")),
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
	}

	if raw := strings.TrimSpace(values.Get("category")); raw != "" && !strings.EqualFold(raw, enums.PlaceCategoryAll) {
		if cat, err := enums.ParsePlaceCategory(raw); err == nil {
			q.Category = &cat
		}
	}

	if raw := strings.TrimSpace(values.Get("author")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			// an unparsable author matches nobody rather than everybody
			id = uuid.Nil
		}
		q.AuthorID = &id
	}

	if _, ok := sortColumns[values.Get("sortBy")]; ok {
		q.SortBy = values.Get("sortBy")
	}
	if order := strings.ToLower(values.Get("sortOrder")); order == SortAsc || order == SortDesc {
		q.SortOrder = order
	}

	q.Geo = parseGeo(values.Get("lat"), values.Get("lng"), values.Get("radius"), defaultRadiusKm)
	q.VisibleOnly = !(q.AuthorID != nil && viewer.Is(*q.AuthorID))

	return q
}

func parseGeo(rawLat, rawLng, rawRadius string, defaultRadiusKm float64) *GeoFilter {
	lat, okLat := parseFinite(rawLat)
	lng, okLng := parseFinite(rawLng)
	if !okLat || !okLng || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil
	}
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	radius, ok := parseFinite(rawRadius)
	if !ok || radius <= 0 {
		radius = defaultRadiusKm
	}
	if radius > MaxRadiusKm {
		radius = MaxRadiusKm
	}
	return &GeoFilter{Lat: lat, Lng: lng, RadiusKm: radius}
}

func parseFinite(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func normalizeTag(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

const geoPointSQL = "ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography"

// Filter applies the WHERE predicate shared by the count and the page query.
func (q ListQuery) Filter(db *gorm.DB) *gorm.DB {
	db = db.Table("places AS p")
	if q.VisibleOnly {
		db = db.Scopes(visibility.PublicPlaces("p"))
	}
	if q.Search != "" {
		db = db.Where("p.search_vector @@ plainto_tsquery('english', ?)", q.Search)
	}
	if q.Category != nil {
		db = db.Where("p.category = ?", *q.Category)
	}
	if q.AuthorID != nil {
		db = db.Where("p.author_id = ?", *q.AuthorID)
	}
	if q.Tag != "" {
		db = db.Where("? = ANY(p.tags)", q.Tag)
	}
	if q.Geo != nil {
		db = db.Where("ST_DWithin(p.location, "+geoPointSQL+", ?)", q.Geo.Lng, q.Geo.Lat, q.Geo.RadiusMeters())
	}
	return db
}

// SelectPage selects one page of rows on top of Filter. While a geo filter is
// active, distance ordering replaces the requested sort.
func (q ListQuery) SelectPage(db *gorm.DB) *gorm.DB {
	db = q.Filter(db).
		Select(placeRowColumns+", "+distanceColumn(q.Geo), distanceArgs(q.Geo)...).
		Joins("JOIN users u ON u.id = p.author_id")

	if q.Geo != nil {
		db = db.Order("distance_meters ASC").Order("p.id ASC")
	} else {
		col := sortColumns[q.SortBy]
		if col == "" {
			col = sortColumns[SortByCreatedAt]
		}
		dir := "DESC"
		if q.SortOrder == SortAsc {
			dir = "ASC"
		}
		db = db.Order(col + " " + dir).Order("p.id " + dir)
	}

	return db.Limit(q.Page.Normalize().Limit).Offset(q.Page.Offset())
}

const placeRowColumns = `p.id, p.author_id, p.is_anonymous, p.name, p.description, p.tags, p.category,
p.rating, p.visit_date, p.address, p.location, p.is_public, p.status, p.views, p.created_at, p.updated_at,
u.first_name AS author_first_name, u.last_name AS author_last_name, u.avatar_url AS author_avatar_url,
(SELECT COUNT(*) FROM place_likes l WHERE l.place_id = p.id) AS likes_count,
(SELECT COUNT(*) FROM place_comments c WHERE c.place_id = p.id) AS comments_count`

func distanceColumn(geo *GeoFilter) string {
	if geo == nil {
		return "NULL AS distance_meters"
	}
	return "ST_Distance(p.location, " + geoPointSQL + ") AS distance_meters"
}

func distanceArgs(geo *GeoFilter) []any {
	if geo == nil {
		return nil
	}
	return []any{geo.Lng, geo.Lat}
}
