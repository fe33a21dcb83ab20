package domain

import "strings"

// LocationInput carries the raw fields of one installation location, as read
// from an open-data CSV row, a seed file, or a database row.
type LocationInput struct {
	Area          string  `yaml:"area"`
	LocationID    int     `yaml:"location_id"`
	Name          string  `yaml:"location_name"`
	PostalCode    string  `yaml:"postal_code"`
	Address       string  `yaml:"address"`
	PhoneNumber   string  `yaml:"phone_number"`
	AvailableTime string  `yaml:"available_time"`
	Floor         string  `yaml:"installation_floor"`
	Latitude      float64 `yaml:"latitude"`
	Longitude     float64 `yaml:"longitude"`
}

// InstallationLocation is an AED installation site. LocationID is the natural
// key; updates replace the whole record rather than mutating it.
type InstallationLocation struct {
	area          string
	locationID    int
	name          string
	postalCode    string
	address       string
	phoneNumber   string
	availableTime string
	floor         string
	point         Point
}

// NewInstallationLocation validates in and builds an immutable record.
func NewInstallationLocation(in LocationInput) (InstallationLocation, error) {
	if in.LocationID <= 0 {
		return InstallationLocation{}, locationErrorf("location id must be positive: %d", in.LocationID)
	}

	p, err := NewPoint(in.Latitude, in.Longitude)
	if err != nil {
		return InstallationLocation{}, err
	}

	return InstallationLocation{
		area:          in.Area,
		locationID:    in.LocationID,
		name:          in.Name,
		postalCode:    strings.TrimSpace(in.PostalCode),
		address:       in.Address,
		phoneNumber:   in.PhoneNumber,
		availableTime: in.AvailableTime,
		floor:         in.Floor,
		point:         p,
	}, nil
}

func (l InstallationLocation) Area() string          { return l.area }
func (l InstallationLocation) LocationID() int       { return l.locationID }
func (l InstallationLocation) Name() string          { return l.name }
func (l InstallationLocation) PostalCode() string    { return l.postalCode }
func (l InstallationLocation) Address() string       { return l.address }
func (l InstallationLocation) PhoneNumber() string   { return l.phoneNumber }
func (l InstallationLocation) AvailableTime() string { return l.availableTime }
func (l InstallationLocation) Floor() string         { return l.floor }
func (l InstallationLocation) Point() Point          { return l.point }
func (l InstallationLocation) Latitude() float64     { return l.point.Latitude() }
func (l InstallationLocation) Longitude() float64    { return l.point.Longitude() }

// Input returns the record as a LocationInput, e.g. for persistence.
func (l InstallationLocation) Input() LocationInput {
	return LocationInput{
		Area:          l.area,
		LocationID:    l.locationID,
		Name:          l.name,
		PostalCode:    l.postalCode,
		Address:       l.address,
		PhoneNumber:   l.phoneNumber,
		AvailableTime: l.availableTime,
		Floor:         l.floor,
		Latitude:      l.point.Latitude(),
		Longitude:     l.point.Longitude(),
	}
}

// CurrentLocation is the user's position for a single proximity search.
// It is never persisted.
type CurrentLocation struct {
	point Point
}

func NewCurrentLocation(lat, lon float64) (CurrentLocation, error) {
	p, err := NewPoint(lat, lon)
	if err != nil {
		return CurrentLocation{}, err
	}
	return CurrentLocation{point: p}, nil
}

// ParseCurrentLocation builds a CurrentLocation from submitted form values.
func ParseCurrentLocation(lat, lon string) (CurrentLocation, error) {
	p, err := ParsePoint(lat, lon)
	if err != nil {
		return CurrentLocation{}, err
	}
	return CurrentLocation{point: p}, nil
}

func (c CurrentLocation) Point() Point       { return c.point }
func (c CurrentLocation) Latitude() float64  { return c.point.Latitude() }
func (c CurrentLocation) Longitude() float64 { return c.point.Longitude() }

// DistanceTo returns the distance in meters to an installation location.
func (c CurrentLocation) DistanceTo(l InstallationLocation) float64 {
	return c.point.DistanceTo(l.point)
}
