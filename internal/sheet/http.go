package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/deltalens/internal/analyze"
)

// HTTPSource reads a sheet from a sheet server with bearer-token auth.
type HTTPSource struct {
	baseURL string
	sheetID string
	token   string
	client  *http.Client
}

// NewHTTPSource returns a source for sheetID on the server at baseURL.
func NewHTTPSource(baseURL, sheetID, token string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		sheetID: sheetID,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Info fetches /sheets/{id}/info.
func (s *HTTPSource) Info(ctx context.Context) (Info, error) {
	var info Info
	if _, err := s.get(ctx, "info", nil, &info); err != nil {
		return Info{}, fmt.Errorf("fetching sheet info: %w", err)
	}
	if info.ID == "" {
		info.ID = s.sheetID
	}
	return info, nil
}

// Households fetches /sheets/{id}/households. A 404 means no index.
func (s *HTTPSource) Households(ctx context.Context) (analyze.HouseholdIndex, error) {
	index := analyze.HouseholdIndex{}
	status, err := s.get(ctx, "households", nil, &index)
	if status == http.StatusNotFound {
		return analyze.HouseholdIndex{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching households: %w", err)
	}
	return index, nil
}

// Deltas fetches /sheets/{id}/deltas?start=N.
func (s *HTTPSource) Deltas(ctx context.Context, afterVersion int) ([]analyze.Delta, error) {
	var deltas []analyze.Delta
	q := url.Values{"start": {strconv.Itoa(afterVersion)}}
	if _, err := s.get(ctx, "deltas", q, &deltas); err != nil {
		return nil, fmt.Errorf("fetching deltas: %w", err)
	}
	return after(deltas, afterVersion), nil
}

func (s *HTTPSource) get(ctx context.Context, resource string, q url.Values, out any) (int, error) {
	u := s.baseURL + "/sheets/" + url.PathEscape(s.sheetID) + "/" + resource
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}
