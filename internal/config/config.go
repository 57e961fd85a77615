// Package config loads the optional postkit.toml file that lives at the root
// of a blog workspace.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up at the workspace root.
const FileName = "postkit.toml"

// Config is the full postkit configuration.
type Config struct {
	Layout    Layout              `toml:"layout"`
	Thumbnail Thumbnail           `toml:"thumbnail"`
	Cache     Cache               `toml:"cache"`
	Log       Log                 `toml:"log"`
	Liquid    Liquid              `toml:"liquid"`
	Keywords  map[string][]string `toml:"keywords"`
}

// Layout describes where posts and thumbnails live in the workspace.
type Layout struct {
	PostsDir       string `toml:"posts_dir"`
	ImagesDir      string `toml:"images_dir"`
	ImageURLPrefix string `toml:"image_url_prefix"`
}

// Thumbnail holds generator settings.
type Thumbnail struct {
	Width             int    `toml:"width"`
	Height            int    `toml:"height"`
	Quality           int    `toml:"quality"`
	Format            string `toml:"format"`
	FontPath          string `toml:"font_path"`
	SearchURL         string `toml:"search_url"`
	MaxSearchKeywords int    `toml:"max_search_keywords"`
	MaxCandidates     int    `toml:"max_candidates"`
	RecentDays        int    `toml:"recent_days"`
	// Scheme forces one colour scheme for every post; empty picks per post.
	Scheme string `toml:"scheme"`
}

// Cache holds the image search cache settings.
type Cache struct {
	Dir string `toml:"dir"`
	TTL string `toml:"ttl"`

	ttl time.Duration
}

// Log holds logger settings.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Liquid holds the raw-tag patcher settings.
type Liquid struct {
	Patterns []string `toml:"patterns"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Layout: Layout{
			PostsDir:       "_posts",
			ImagesDir:      filepath.Join("assets", "img", "posts"),
			ImageURLPrefix: "/assets/img/posts/",
		},
		Thumbnail: Thumbnail{
			Width:             1200,
			Height:            630,
			Quality:           85,
			Format:            "webp",
			SearchURL:         "https://source.unsplash.com/1200x630/?{query}",
			MaxSearchKeywords: 3,
			MaxCandidates:     5,
			RecentDays:        7,
		},
		Cache: Cache{
			Dir: ".thumbnail_cache",
			TTL: "24h",
			ttl: 24 * time.Hour,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Liquid: Liquid{
			Patterns: []string{"_posts/*django*.md", "_posts/*yolo*.md"},
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error; the
// second return value reports whether the file existed.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("read config: %w", err)
	}
	if exists {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, true, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, exists, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, exists, nil
}

// TTLDuration returns the parsed cache expiry window.
func (c Cache) TTLDuration() time.Duration {
	return c.ttl
}

// PostsPath joins the posts directory onto workspace.
func (l Layout) PostsPath(workspace string) string {
	return joinWorkspace(workspace, l.PostsDir)
}

// ImagesPath joins the images directory onto workspace.
func (l Layout) ImagesPath(workspace string) string {
	return joinWorkspace(workspace, l.ImagesDir)
}

// Path joins the cache directory onto workspace.
func (c Cache) Path(workspace string) string {
	return joinWorkspace(workspace, c.Dir)
}

func joinWorkspace(workspace, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(workspace, dir)
}

func (c *Config) normalize() error {
	c.Layout.PostsDir = strings.TrimSpace(c.Layout.PostsDir)
	c.Layout.ImagesDir = strings.TrimSpace(c.Layout.ImagesDir)
	c.Layout.ImageURLPrefix = strings.TrimSpace(c.Layout.ImageURLPrefix)
	if c.Layout.ImageURLPrefix != "" && !strings.HasSuffix(c.Layout.ImageURLPrefix, "/") {
		c.Layout.ImageURLPrefix += "/"
	}

	c.Thumbnail.Format = strings.ToLower(strings.TrimSpace(c.Thumbnail.Format))
	if c.Thumbnail.Format == "jpg" {
		c.Thumbnail.Format = "jpeg"
	}
	c.Thumbnail.FontPath = strings.TrimSpace(c.Thumbnail.FontPath)
	c.Thumbnail.Scheme = strings.ToLower(strings.TrimSpace(c.Thumbnail.Scheme))

	c.Cache.TTL = strings.TrimSpace(c.Cache.TTL)
	if c.Cache.TTL == "" {
		c.Cache.TTL = "24h"
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	c.Cache.ttl = ttl

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	normalized := make(map[string][]string, len(c.Keywords))
	for key, terms := range c.Keywords {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		normalized[key] = terms
	}
	c.Keywords = normalized
	return nil
}
