package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-lookup/internal/domain"
	"github.com/Clark-Hu/movie-lookup/internal/logger"
)

// DefaultBaseURL is the public OMDb endpoint.
const DefaultBaseURL = "http://www.omdbapi.com/"

const maxResponseBody = 1 << 20 // 1 MiB

// StatusError is returned when OMDb answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "omdb: unexpected status"
	}
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("omdb: upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("omdb: upstream returned %d: %s", e.StatusCode, e.Message)
}

// Client defines the contract for querying OMDb by IMDb id.
type Client interface {
	Fetch(ctx context.Context, id string) (*Payload, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewHTTPClient constructs a new HTTP-backed OMDb client. timeout bounds the
// whole exchange, body included.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, log *zap.SugaredLogger) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse omdb url: %q is not absolute", baseURL)
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger.OrNop(log),
	}, nil
}

// Fetch issues GET <base>?i=<id>&apikey=<key>. A decoded payload is returned
// for every 2xx reply, including Response "False"; interpreting the flag is
// the caller's job.
func (c *HTTPClient) Fetch(ctx context.Context, id string) (*Payload, error) {
	endpoint := *c.baseURL
	q := endpoint.Query()
	q.Set("i", id)
	q.Set("apikey", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, maxResponseBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var payload Payload
		if json.NewDecoder(body).Decode(&payload) == nil {
			statusErr.Message = payload.Error
		}
		c.logger.Warnw("omdb: unexpected status", "status", resp.StatusCode, "id", id, "message", statusErr.Message)
		return nil, statusErr
	}

	var payload Payload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	c.logger.Debugw("omdb: fetched", "id", id, "response", payload.Response, "took", time.Since(started))
	return &payload, nil
}

// IsTimeout reports whether err is a deadline or cancellation signal rather
// than an ordinary transport failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Payload mirrors the OMDb lookup-by-id response.
type Payload struct {
	Response   string                `json:"Response"`
	Error      string                `json:"Error,omitempty"`
	Title      string                `json:"Title,omitempty"`
	Year       string                `json:"Year,omitempty"`
	Poster     string                `json:"Poster,omitempty"`
	Director   string                `json:"Director,omitempty"`
	Actors     string                `json:"Actors,omitempty"`
	Genre      string                `json:"Genre,omitempty"`
	Runtime    string                `json:"Runtime,omitempty"`
	IMDbRating string                `json:"imdbRating,omitempty"`
	Ratings    []domain.RatingSource `json:"Ratings,omitempty"`
}

// Found reports the payload's top-level success flag.
func (p *Payload) Found() bool {
	return p != nil && p.Response == "True"
}

// Record copies the payload fields into a MovieRecord without transformation.
func (p *Payload) Record() *domain.MovieRecord {
	if p == nil {
		return nil
	}
	var ratings []domain.RatingSource
	if p.Ratings != nil {
		ratings = make([]domain.RatingSource, len(p.Ratings))
		copy(ratings, p.Ratings)
	}
	return &domain.MovieRecord{
		Title:      p.Title,
		Year:       p.Year,
		Poster:     p.Poster,
		Director:   p.Director,
		Actors:     p.Actors,
		Genre:      p.Genre,
		Runtime:    p.Runtime,
		IMDbRating: p.IMDbRating,
		Ratings:    ratings,
	}
}
