package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/movstream/streaming-service/internal/config"
	"github.com/pkg/errors"
)

var (
	ErrMovieNotFound = errors.New("catalog: movie not found")
	ErrUnavailable   = errors.New("catalog: service unavailable")
)

type Movie struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	PosterURL string `json:"poster_url"`
}

// Client talks to the movie catalog service. Only lookup-by-id is consumed
// here; the catalog itself is an external collaborator.
type Client interface {
	GetMovie(ctx context.Context, movieID int64) (*Movie, error)
	VerifyMovieExists(ctx context.Context, movieID int64) error
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg *config.Config) Client {
	timeout := time.Duration(cfg.Catalog.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpClient{
		baseURL: cfg.Catalog.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) GetMovie(ctx context.Context, movieID int64) (*Movie, error) {
	url := fmt.Sprintf("%s/movies/%d", c.baseURL, movieID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "catalog.GetMovie")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, ErrUnavailable
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrMovieNotFound
	case res.StatusCode != http.StatusOK:
		return nil, ErrUnavailable
	}

	movie := &Movie{}
	if err := json.NewDecoder(res.Body).Decode(movie); err != nil {
		return nil, errors.Wrap(err, "catalog.GetMovie decode")
	}
	return movie, nil
}

func (c *httpClient) VerifyMovieExists(ctx context.Context, movieID int64) error {
	_, err := c.GetMovie(ctx, movieID)
	return err
}
