package models

import (
	"fmt"
	"time"
)

// Identity is an authenticatable principal. The credential hash is never
// serialized toward clients.
type Identity struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	CredentialHash   string    `json:"-"`
	IsDefaultAccount bool      `json:"isDefaultAccount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Session is a time-bounded proof that a request originates from an
// authenticated Identity. Owned by the session store; expired rows are
// purged lazily when resolved.
type Session struct {
	Token      string
	IdentityID string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// PersonInfo is an open bag of free-text attributes; any subset may be set.
type PersonInfo struct {
	Name      string `json:"name,omitempty"`
	Sex       string `json:"sex,omitempty"`
	Age       string `json:"age,omitempty"`
	Height    string `json:"height,omitempty"`
	Build     string `json:"build,omitempty"`
	HairColor string `json:"hairColor,omitempty"`
	EyeColor  string `json:"eyeColor,omitempty"`
	Clothing  string `json:"clothing,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// VehicleInfo is an open bag of free-text attributes; any subset may be set.
type VehicleInfo struct {
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Color        string `json:"color,omitempty"`
	Year         string `json:"year,omitempty"`
	LicensePlate string `json:"licensePlate,omitempty"`
	State        string `json:"state,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// IncidentLocation carries structured address components plus optional raw
// coordinates. FormattedAddress is a cached projection of the structured
// components, never an independent source of truth.
type IncidentLocation struct {
	StreetNumber     string   `json:"streetNumber,omitempty"`
	StreetName       string   `json:"streetName,omitempty"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	ZipCode          string   `json:"zipCode,omitempty"`
	FormattedAddress string   `json:"formattedAddress,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// Coordinates reports the location's lat/lon when both are present.
func (l *IncidentLocation) Coordinates() (lat, lon float64, ok bool) {
	if l == nil || l.Latitude == nil || l.Longitude == nil {
		return 0, 0, false
	}
	return *l.Latitude, *l.Longitude, true
}

// FormatAddress derives the canonical single-line address. It only reports
// ok when every structured component is present; partial addresses are not
// formatted.
func FormatAddress(l IncidentLocation) (string, bool) {
	if l.StreetNumber == "" || l.StreetName == "" || l.City == "" || l.State == "" || l.ZipCode == "" {
		return "", false
	}
	return fmt.Sprintf("%s %s, %s, %s %s", l.StreetNumber, l.StreetName, l.City, l.State, l.ZipCode), true
}

// RefreshFormattedAddress recomputes the cached formatted address from the
// structured components, discarding whatever value arrived on ingest. A
// coordinates-only location keeps an empty formatted address.
func (l *IncidentLocation) RefreshFormattedAddress() {
	if l == nil {
		return
	}
	if addr, ok := FormatAddress(*l); ok {
		l.FormattedAddress = addr
	} else {
		l.FormattedAddress = ""
	}
}

// ImageMetadata describes an attached image.
type ImageMetadata struct {
	ContentType string `json:"contentType,omitempty"`
	SizeBytes   int64  `json:"sizeBytes,omitempty"`
	CapturedAt  string `json:"capturedAt,omitempty"`
}

// ImageRef is an image attachment embedded in its observation record; no
// image exists independent of a record.
type ImageRef struct {
	URL         string         `json:"url"`
	Description string         `json:"description,omitempty"`
	Metadata    *ImageMetadata `json:"metadata,omitempty"`
}

// ObservationRecord is the core domain entity: a dated incident record
// with person/vehicle/location/image sub-structures. IDs are assigned
// monotonically by the repository and never reused.
type ObservationRecord struct {
	ID        int64             `json:"id"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Person    PersonInfo        `json:"person"`
	Vehicle   VehicleInfo       `json:"vehicle"`
	Location  *IncidentLocation `json:"location,omitempty"`
	Images    []ImageRef        `json:"images"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ObservationPatch is a partial update. Only non-nil top-level fields
// replace the stored value; person/vehicle/location are replaced as whole
// blocks, not deep-merged.
type ObservationPatch struct {
	Date     *string           `json:"date,omitempty"`
	Time     *string           `json:"time,omitempty"`
	Person   *PersonInfo       `json:"person,omitempty"`
	Vehicle  *VehicleInfo      `json:"vehicle,omitempty"`
	Location *IncidentLocation `json:"location,omitempty"`
	Images   *[]ImageRef       `json:"images,omitempty"`
}

// SearchFilter is a sparse filter; absent keys impose no constraint.
type SearchFilter struct {
	DateFrom       string          `json:"dateFrom,omitempty"`
	DateTo         string          `json:"dateTo,omitempty"`
	PersonFields   *PersonInfo     `json:"personFields,omitempty"`
	VehicleFields  *VehicleInfo    `json:"vehicleFields,omitempty"`
	LocationRadius *LocationRadius `json:"locationRadius,omitempty"`
}

// LocationRadius selects records within RadiusMeters of a center point.
type LocationRadius struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// DocumentFormatVersion is the current exchange document version.
const DocumentFormatVersion = 1

// Document is the versioned container produced by export and consumed by
// import.
type Document struct {
	FormatVersion int                 `json:"formatVersion"`
	ExportedAt    time.Time           `json:"exportedAt"`
	Records       []ObservationRecord `json:"records"`
}

// ImportResult reports a possibly partial import outcome.
type ImportResult struct {
	ImportedCount int      `json:"importedCount"`
	Errors        []string `json:"errors"`
}
