package domain

// WeatherSnapshot holds current conditions for one city. It is derived
// per-request from the weather API and never persisted.
type WeatherSnapshot struct {
	City        string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Description string
	WindSpeed   float64
	Icon        string
}
