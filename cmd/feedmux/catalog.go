package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/feedmux/feedmux-go/pkg/keyhash"
)

// defaultInterval is used for feeds that do not specify one.
const defaultInterval = time.Second

// Catalog is the on-disk feed catalogue format.
type Catalog struct {
	Feeds []FeedSpec `yaml:"feeds"`
}

// FeedSpec describes one named feed in the catalogue.
type FeedSpec struct {
	// Name is the label consumers use to refer to the feed.
	Name string `yaml:"name"`

	// Interval between emissions, as a Go duration string ("500ms").
	Interval string `yaml:"interval,omitempty"`

	// Key is the structured subscription key; its stable hash is the
	// registry key, so two specs with structurally equal keys share one
	// subscription.
	Key map[string]any `yaml:"key"`
}

// Feed is a resolved catalogue entry.
type Feed struct {
	Name     string
	Key      string // stable hash of the structured key
	Interval time.Duration
}

// LoadCatalog reads and resolves a YAML feed catalogue.
func LoadCatalog(path string) ([]Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return resolveCatalog(catalog)
}

func resolveCatalog(catalog Catalog) ([]Feed, error) {
	if len(catalog.Feeds) == 0 {
		return nil, fmt.Errorf("catalog defines no feeds")
	}

	seen := make(map[string]bool)
	feeds := make([]Feed, 0, len(catalog.Feeds))
	for i, spec := range catalog.Feeds {
		if spec.Name == "" {
			return nil, fmt.Errorf("feed %d: missing name", i)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("feed %q: duplicate name", spec.Name)
		}
		seen[spec.Name] = true

		if len(spec.Key) == 0 {
			return nil, fmt.Errorf("feed %q: missing key", spec.Name)
		}

		interval := defaultInterval
		if spec.Interval != "" {
			parsed, err := time.ParseDuration(spec.Interval)
			if err != nil {
				return nil, fmt.Errorf("feed %q: bad interval: %w", spec.Name, err)
			}
			if parsed <= 0 {
				return nil, fmt.Errorf("feed %q: interval must be positive", spec.Name)
			}
			interval = parsed
		}

		key, err := keyhash.Hash(spec.Key)
		if err != nil {
			return nil, fmt.Errorf("feed %q: hash key: %w", spec.Name, err)
		}

		feeds = append(feeds, Feed{
			Name:     spec.Name,
			Key:      key,
			Interval: interval,
		})
	}
	return feeds, nil
}

// DefaultCatalog returns the built-in demo feeds used when no catalogue
// file is given.
func DefaultCatalog() []Feed {
	feeds, err := resolveCatalog(Catalog{Feeds: []FeedSpec{
		{Name: "btc-usd", Interval: "500ms", Key: map[string]any{"exchange": "demo", "symbol": "BTC-USD"}},
		{Name: "eth-usd", Interval: "500ms", Key: map[string]any{"exchange": "demo", "symbol": "ETH-USD"}},
		{Name: "heartbeat", Interval: "2s", Key: map[string]any{"channel": "heartbeat"}},
	}})
	if err != nil {
		panic(err) // built-in catalogue is static and must resolve
	}
	return feeds
}
