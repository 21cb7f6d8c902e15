package domain

// MovieRecord is the metadata returned by a successful lookup. Field values are
// kept exactly as the upstream API sent them.
type MovieRecord struct {
	Title      string         `json:"Title"`
	Year       string         `json:"Year"`
	Poster     string         `json:"Poster"`
	Director   string         `json:"Director"`
	Actors     string         `json:"Actors"`
	Genre      string         `json:"Genre"`
	Runtime    string         `json:"Runtime"`
	IMDbRating string         `json:"imdbRating"`
	Ratings    []RatingSource `json:"Ratings"`
}
