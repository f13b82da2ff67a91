package catalog

// Movie is one catalog entry. JSON keys follow the bundled data file.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"movieName"`
	Director    string  `json:"director"`
	Year        int     `json:"year"`
	Genre       string  `json:"genre"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Rating      float64 `json:"imdbRating"`
}
