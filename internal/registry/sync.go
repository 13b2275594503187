package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"fleet-dispatch-backend/config"
	"fleet-dispatch-backend/internal/store"
)

// Service mirrors the external fleet registry into the local vehicle and
// driver tables on an interval. The workflow engine treats those tables as
// read-only reference data; this service is their only writer.
type Service struct {
	cfg    *config.Config
	store  store.Store
	client *http.Client
}

// NewService creates and initializes a new registry sync service.
func NewService(cfg *config.Config, store store.Store) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.Registry.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Registry.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Registry sync will not use a proxy.", cfg.Registry.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:   cfg,
		store: store,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// Run starts the sync process in a loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Registry.Enabled {
		log.Println("Registry sync is disabled. Not starting.")
		return
	}
	log.Println("Starting registry sync service...")

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Registry.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Registry sync service shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Registry.Interval)
		}
	}
}

// SyncOnce performs a single fetch of the registry feed and delegates
// persistence to the store. A failed fetch leaves the local mirror as-is;
// stale reference data beats an emptied fleet table.
func (s *Service) SyncOnce(ctx context.Context) {
	log.Println("Executing registry sync cycle...")

	feed, err := s.fetchFeed(ctx)
	if err != nil {
		log.Printf("Error fetching registry feed: %v. Fleet mirror will not be updated.", err)
		return
	}

	if len(feed.Data.Vehicles) == 0 && len(feed.Data.Drivers) == 0 {
		log.Println("Registry feed returned no records; skipping upsert.")
		return
	}

	if err := s.store.UpsertFleet(ctx, feed.Data.Vehicles, feed.Data.Drivers); err != nil {
		log.Printf("Error upserting fleet records: %v", err)
		return
	}

	log.Printf("Registry sync cycle finished: %d vehicles, %d drivers.",
		len(feed.Data.Vehicles), len(feed.Data.Drivers))
}

// fetchFeed fetches the registry feed from the upstream API.
func (s *Service) fetchFeed(ctx context.Context) (*FeedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Registry.Request.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range s.cfg.Registry.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feed FeedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry response: %w", err)
	}

	if feed.Code != 0 {
		return nil, fmt.Errorf("registry returned non-zero application code: %d", feed.Code)
	}

	return &feed, nil
}
