package domain

// RatingSource is one entry of a record's ordered ratings list.
type RatingSource struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}
