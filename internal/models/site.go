package models

// Site is a known excavation site. Location is a "lat,lon" string and may
// be empty for sites added in the field.
type Site struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
}
