package omdb

import (
	"testing"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
)

func FuzzPayloadRecord(f *testing.F) {
	f.Add("True", "The Shawshank Redemption", "1994", "9.3", "Rotten Tomatoes", "89%")
	f.Add("False", "", "", "", "", "")
	f.Add("true", "  padded  ", "N/A", "N/A", "", "")

	f.Fuzz(func(t *testing.T, response, title, year, rating, source, value string) {
		p := &Payload{
			Response:   response,
			Title:      title,
			Year:       year,
			IMDbRating: rating,
			Ratings:    []domain.RatingSource{{Source: source, Value: value}},
		}

		if p.Found() != (response == "True") {
			t.Fatalf("Found() = %v for Response %q", p.Found(), response)
		}

		rec := p.Record()
		if rec.Title != title || rec.Year != year || rec.IMDbRating != rating {
			t.Fatalf("record fields were transformed: %+v", rec)
		}
		if len(rec.Ratings) != 1 || rec.Ratings[0].Source != source || rec.Ratings[0].Value != value {
			t.Fatalf("ratings were transformed: %+v", rec.Ratings)
		}

		p.Ratings[0].Value = value + "!"
		if rec.Ratings[0].Value != value {
			t.Fatalf("record shares ratings storage with payload")
		}
	})
}
