package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-lookup/internal/logger"
	"github.com/Clark-Hu/movie-lookup/internal/omdb"
)

func main() {
	var (
		port     = flag.String("port", "9099", "port to listen on")
		data     = flag.String("data", "cmd/omdb-mock/mock-omdb.json", "path to mock data file")
		apiKey   = flag.String("apikey", "", "required apikey value; empty accepts any key")
		delay    = flag.Duration("delay", 0, "artificial latency added to every response")
		logLevel = flag.String("log", "info", "log level")
	)
	flag.Parse()

	sugar, err := logger.New("development", *logLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	fixtures, err := loadFixtures(*data)
	if err != nil {
		sugar.Fatalw("load mock data", "path", *data, "error", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", newHandler(fixtures, *apiKey, *delay, sugar))

	addr := ":" + *port
	sugar.Infow("mock omdb listening", "addr", addr, "entries", len(fixtures), "delay", *delay)
	if err := http.ListenAndServe(addr, mux); err != nil {
		sugar.Fatalw("server error", "error", err)
	}
}

func loadFixtures(path string) (map[string]omdb.Payload, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixtures map[string]omdb.Payload
	if err := json.Unmarshal(file, &fixtures); err != nil {
		return nil, err
	}
	for id, p := range fixtures {
		if p.Response == "" {
			p.Response = "True"
			fixtures[id] = p
		}
	}
	return fixtures, nil
}

// newHandler answers the OMDb by-id query the way the live API does: unknown
// ids and bad keys still come back as JSON with Response "False".
func newHandler(fixtures map[string]omdb.Payload, apiKey string, delay time.Duration, log *zap.SugaredLogger) http.Handler {
	log = logger.OrNop(log)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		q := r.URL.Query()
		id := strings.TrimSpace(q.Get("i"))
		log.Debugw("mock omdb: request", "id", id)

		if apiKey != "" && q.Get("apikey") != apiKey {
			writePayload(w, http.StatusUnauthorized, omdb.Payload{Response: "False", Error: "Invalid API key!"})
			return
		}
		if id == "" {
			writePayload(w, http.StatusOK, omdb.Payload{Response: "False", Error: "Incorrect IMDb ID."})
			return
		}
		entry, ok := fixtures[id]
		if !ok {
			writePayload(w, http.StatusOK, omdb.Payload{Response: "False", Error: "Incorrect IMDb ID."})
			return
		}
		writePayload(w, http.StatusOK, entry)
	})
}

func writePayload(w http.ResponseWriter, status int, p omdb.Payload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
