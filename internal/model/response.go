package model

import "time"

// SearchRequest is the body of POST /api/v1/search
type SearchRequest struct {
	Term        string       `json:"term"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// SourceStatus reports how one data source behaved during a search
type SourceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "failed"
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// SearchResponse is the scored result of a search
type SearchResponse struct {
	RequestID        string         `json:"request_id"`
	Term             string         `json:"term"`
	Results          []VehicleSpec  `json:"results"`
	Total            int            `json:"total"`
	Sources          []SourceStatus `json:"sources"`
	AllSourcesFailed bool           `json:"all_sources_failed"`
}

// ScoresRequest is the body of POST /api/v1/scores
type ScoresRequest struct {
	Specs       []VehicleSpec `json:"specs"`
	Preferences Preferences   `json:"preferences"`
}

// ScoresResponse carries re-scored specs, best first
type ScoresResponse struct {
	Results []VehicleSpec `json:"results"`
}

// CompareRequest is the body of POST /api/v1/compare
type CompareRequest struct {
	Specs []VehicleSpec `json:"specs"`
}

// CompareResponse carries the winners and the radar chart matrix
type CompareResponse struct {
	Ranking Ranking    `json:"ranking"`
	Radar   []RadarRow `json:"radar"`
}

// PreferencesResponse describes default preferences and slider bounds
type PreferencesResponse struct {
	Defaults Preferences      `json:"defaults"`
	Bounds   PreferenceBounds `json:"bounds"`
}

// BrandsResponse lists the brands present in the seed catalog
type BrandsResponse struct {
	Brands []string `json:"brands"`
}

// ImageResponse is a resolved car image reference
type ImageResponse struct {
	URL    string   `json:"url"`
	Angles []string `json:"angles"`
}

// FavoriteRequest is the body of POST /api/v1/favorites
type FavoriteRequest struct {
	Spec  VehicleSpec `json:"spec"`
	Color string      `json:"color"`
}

// ColorRequest is the body of PUT /api/v1/favorites/{id}/color
type ColorRequest struct {
	Color string `json:"color"`
}

// FavoritesResponse lists favorites of one owner
type FavoritesResponse struct {
	Favorites []FavoriteRecord `json:"favorites"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
