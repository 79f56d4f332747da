package domain

import "time"

// StationStatus is the renting availability state of a station.
type StationStatus string

const (
	StatusOpen   StationStatus = "OPEN"
	StatusClosed StationStatus = "CLOSED"
)

// City is a consolidated municipality row, keyed by INSEE code and snapshot date.
type City struct {
	ID           string
	Name         string
	Population   *int // nullable: the reference feed omits it for some communes
	SnapshotDate time.Time
}

// Station is a consolidated bike station row, keyed by provider-local code and
// snapshot date. Provider-local codes are disjoint across providers in
// practice, so station rows from all providers share one table.
type Station struct {
	ID           string
	Code         string
	Name         string
	CityName     string
	CityID       string // INSEE code; soft reference into City.ID
	Address      *string
	Longitude    float64
	Latitude     float64
	Status       StationStatus
	Capacity     int
	SnapshotDate time.Time
}

// StationStatement is one point-in-time availability reading for a station.
type StationStatement struct {
	StationID         string
	DocksAvailable    int
	BicyclesAvailable int
	LastStatementTime time.Time
	SnapshotDate      time.Time
}
