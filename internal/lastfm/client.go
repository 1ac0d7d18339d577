package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultBaseURL       = "http://ws.audioscrobbler.com/2.0/"
	defaultTagsPerArtist = 3
	userAgent            = "spotify-song-recommendation/1.0"
)

// Last.fm API error codes.
const (
	errCodeInvalidParams = 6
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrRateLimited is returned when Last.fm rejects a request for rate.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrArtistNotFound is returned when Last.fm does not know the artist.
	ErrArtistNotFound = errors.New("artist not found")
)

// Client is a Last.fm API client.
type Client struct {
	apiKey        string
	tagsPerArtist int
	httpClient    *http.Client
	baseURL       string
}

// NewClient creates a Last.fm API client. Returns ErrMissingAPIKey if
// cfg.APIKey is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.TagsPerArtist <= 0 {
		cfg.TagsPerArtist = defaultTagsPerArtist
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		apiKey:        cfg.APIKey,
		tagsPerArtist: cfg.TagsPerArtist,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
	}, nil
}

// ArtistGenres returns the top tags of each artist, lowercased, as one flat
// list. Tags repeat across artists so callers can rank them by frequency.
// Unknown artists contribute nothing; any other error aborts the lookup.
func (c *Client) ArtistGenres(ctx context.Context, artistNames []string) ([]string, error) {
	genres := []string{}
	for _, name := range artistNames {
		tags, err := c.ArtistTags(ctx, name)
		if errors.Is(err, ErrArtistNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for i, tag := range tags {
			if i == c.tagsPerArtist {
				break
			}
			if g := strings.ToLower(strings.TrimSpace(tag.Name)); g != "" {
				genres = append(genres, g)
			}
		}
	}
	return genres, nil
}

// ArtistTags fetches the top tags for an artist, most popular first.
// Returns an empty slice (not nil) when the artist has no tags.
func (c *Client) ArtistTags(ctx context.Context, artist string) ([]Tag, error) {
	params := url.Values{
		"method":      {"artist.getTopTags"},
		"artist":      {artist},
		"autocorrect": {"1"},
		"format":      {"json"},
		"api_key":     {c.apiKey},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching artist tags for %q: %w", artist, err)
	}

	var resp artistTagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing artist tags response: %w", err)
	}

	if resp.TopTags.Tag == nil {
		return []Tag{}, nil
	}
	return resp.TopTags.Tag, nil
}

// doRequest performs a single GET request and maps Last.fm error payloads
// to sentinel errors.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		case errCodeInvalidParams:
			return nil, ErrArtistNotFound
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
