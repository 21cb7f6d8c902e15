package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
	"github.com/Clark-Hu/movie-lookup/internal/lookup"
)

// screen renders controller events. All output goes through consume so the
// loading line, record and alerts never interleave.
type screen struct {
	out     io.Writer
	settled chan struct{}
}

func newScreen(out io.Writer) *screen {
	return &screen{out: out, settled: make(chan struct{}, 1)}
}

func (s *screen) consume(events <-chan lookup.Event) {
	for ev := range events {
		switch {
		case ev.Alert != nil:
			renderAlert(s.out, *ev.Alert)
			s.signal()
		case ev.Snapshot != nil:
			switch ev.Snapshot.State {
			case domain.StateInFlight:
				fmt.Fprintf(s.out, "Loading %s...\n", ev.Snapshot.ID)
			case domain.StateSucceeded:
				renderRecord(s.out, ev.Snapshot.Record)
				s.signal()
			}
		}
	}
}

func (s *screen) signal() {
	select {
	case s.settled <- struct{}{}:
	default:
	}
}

func renderRecord(w io.Writer, rec *domain.MovieRecord) {
	if rec == nil {
		return
	}
	fmt.Fprintf(w, "\n%s (%s)\n", rec.Title, rec.Year)
	fmt.Fprintln(w, strings.Repeat("=", len(rec.Title)+len(rec.Year)+3))
	field(w, "Poster", rec.Poster)
	field(w, "Director", rec.Director)
	field(w, "Actors", rec.Actors)
	field(w, "Genre", rec.Genre)
	field(w, "Runtime", rec.Runtime)
	field(w, "IMDb rating", rec.IMDbRating)
	if len(rec.Ratings) > 0 {
		fmt.Fprintln(w, "Ratings:")
		for _, r := range rec.Ratings {
			fmt.Fprintf(w, "  - %s: %s\n", r.Source, r.Value)
		}
	}
	fmt.Fprintln(w)
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-12s %s\n", label+":", value)
}

func renderAlert(w io.Writer, a lookup.Alert) {
	fmt.Fprintf(w, "\n[%s] %s\n\n", a.Title, a.Message)
}
