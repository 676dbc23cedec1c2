package domain

import "fmt"

// Location is an approximate place derived from a client IP address.
// Approximate is true whenever the fixed default location was substituted
// for a real lookup (local IP, lookup failure, or no IP at all).
type Location struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Approximate bool    `json:"isApproximate"`
}

// Display returns the location as shown to users, e.g. "Cairo, Egypt".
// Partially populated locations degrade to whichever fields exist, and a
// coordinate-only location renders its coordinates.
func (l Location) Display() string {
	switch {
	case l.City != "" && l.Country != "":
		return fmt.Sprintf("%s, %s", l.City, l.Country)
	case l.City != "":
		return l.City
	case l.Country != "":
		return l.Country
	case l.Lat != 0 || l.Lon != 0:
		return fmt.Sprintf("%.2f, %.2f", l.Lat, l.Lon)
	}

	return "Unknown"
}

// Weather is a current-conditions snapshot used to style an outfit.
// Temperatures are whole degrees Celsius. Synthetic is true when the
// deterministic fallback model produced the data instead of a live
// provider; the JSON name keeps the wire contract the UI already relies on.
type Weather struct {
	Location    string  `json:"location"`
	Temperature int     `json:"temperature"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	WindSpeed   float64 `json:"windSpeed"`
	FeelsLike   int     `json:"feelsLike"`
	MinTemp     int     `json:"minTemp"`
	MaxTemp     int     `json:"maxTemp"`
	Synthetic   bool    `json:"isMock"`
}
