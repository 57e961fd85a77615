package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateThumbnail(); err != nil {
		return err
	}
	if c.Cache.Dir == "" {
		return errors.New("cache.dir must not be empty")
	}
	if c.Cache.ttl <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %q", c.Cache.TTL)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	return nil
}

func (c *Config) validateLayout() error {
	if c.Layout.PostsDir == "" {
		return errors.New("layout.posts_dir must not be empty")
	}
	if c.Layout.ImagesDir == "" {
		return errors.New("layout.images_dir must not be empty")
	}
	if !strings.HasPrefix(c.Layout.ImageURLPrefix, "/") {
		return fmt.Errorf("layout.image_url_prefix must start with /, got %q", c.Layout.ImageURLPrefix)
	}
	return nil
}

func (c *Config) validateThumbnail() error {
	t := c.Thumbnail
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("thumbnail size must be positive, got %dx%d", t.Width, t.Height)
	}
	if t.Quality < 1 || t.Quality > 100 {
		return fmt.Errorf("thumbnail.quality must be 1-100, got %d", t.Quality)
	}
	switch t.Format {
	case "webp", "jpeg", "png":
	default:
		return fmt.Errorf("thumbnail.format: unsupported value %q", t.Format)
	}
	if t.SearchURL != "" && !strings.Contains(t.SearchURL, "{query}") {
		return fmt.Errorf("thumbnail.search_url must contain {query}, got %q", t.SearchURL)
	}
	switch t.Scheme {
	case "", "default", "aws", "python", "django", "ai", "firebase", "opencv":
	default:
		return fmt.Errorf("thumbnail.scheme: unknown scheme %q", t.Scheme)
	}
	if t.MaxSearchKeywords < 0 || t.MaxCandidates < 0 || t.RecentDays < 0 {
		return errors.New("thumbnail counts must not be negative")
	}
	return nil
}
