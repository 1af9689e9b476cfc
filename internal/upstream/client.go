package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JustinTDCT/VidVault/internal/models"
)

// FetchError is a non-2xx answer from the upstream catalog API.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Client talks to the third-party catalog API. Movies paginate; the taxonomy
// endpoints return their full list on every call.
type Client struct {
	baseURL    string
	pageLimit  int
	httpClient *http.Client
}

func NewClient(baseURL string, pageLimit int) *Client {
	if pageLimit <= 0 {
		pageLimit = 24
	}
	return &Client{
		baseURL:   baseURL,
		pageLimit: pageLimit,
		// Per-request deadlines come from the caller's timeout, not the client.
		httpClient: &http.Client{},
	}
}

type movieEnvelope struct {
	Success bool             `json:"success"`
	Data    []models.RawItem `json:"data"`
}

type listEnvelope struct {
	Data []models.RawItem `json:"data"`
}

// FetchPage retrieves one page of raw items, aborting hard at timeout.
func (c *Client) FetchPage(ctx context.Context, jobType models.JobType, page int, keyword string, timeout time.Duration) ([]models.RawItem, error) {
	reqURL, err := c.buildURL(jobType, page, keyword)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if jobType == models.JobTypeMovies {
		var env movieEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("parse movie response: %w", err)
		}
		if !env.Success {
			return nil, fmt.Errorf("upstream reported failure for page %d", page)
		}
		return env.Data, nil
	}

	// Taxonomy endpoints answer with either a bare array or {data:[...]}.
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []models.RawItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse %s response: %w", jobType, err)
		}
		return items, nil
	}
	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", jobType, err)
	}
	return env.Data, nil
}

func (c *Client) buildURL(jobType models.JobType, page int, keyword string) (string, error) {
	switch jobType {
	case models.JobTypeMovies:
		u, err := url.Parse(c.baseURL + "/videos")
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(c.pageLimit))
		if keyword != "" {
			q.Set("search", keyword)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	case models.JobTypeCategories:
		return c.baseURL + "/categories", nil
	case models.JobTypeActors:
		return c.baseURL + "/actors", nil
	case models.JobTypeCountries:
		return c.baseURL + "/countries", nil
	default:
		return "", fmt.Errorf("unknown job type %q", jobType)
	}
}
