package teamevents

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Fetcher downloads the raw ICS payload from the team calendar URL.
type Fetcher struct {
	client *http.Client
	url    string
}

func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		url: url,
	}
}

func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	if f.url == "" {
		return nil, errors.New("calendar URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("calendar feed returned " + resp.Status)
	}

	return io.ReadAll(resp.Body)
}
