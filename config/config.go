package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/xeptore/tunedl/redact"
	"github.com/xeptore/tunedl/unit"
)

const DefaultFilename = "config.yaml"

type Config struct {
	Log        Log        `yaml:"log"`
	Spotify    Spotify    `yaml:"spotify"`
	Downloader Downloader `yaml:"downloader"`
	Store      Store      `yaml:"store"`
}

func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("log", c.Log.ToDict()).
		Dict("spotify", c.Spotify.ToDict()).
		Dict("downloader", c.Downloader.ToDict()).
		Dict("store", c.Store.ToDict())
}

func (c *Config) setDefaults() {
	c.Log.setDefaults()
	c.Spotify.setDefaults()
	c.Downloader.setDefaults()
	c.Store.setDefaults()
}

func (c *Config) validate() error {
	if err := c.Log.validate(); nil != err {
		return fmt.Errorf("log config validation failed: %v", err)
	}

	if err := c.Spotify.validate(); nil != err {
		return fmt.Errorf("spotify config validation failed: %v", err)
	}

	if err := c.Downloader.validate(); nil != err {
		return fmt.Errorf("downloader config validation failed: %v", err)
	}

	if err := c.Store.validate(); nil != err {
		return fmt.Errorf("store config validation failed: %v", err)
	}

	return nil
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "pretty"
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}, c.Level) {
		return fmt.Errorf(
			"level must be one of: trace, debug, info, warn, error, fatal, panic, got: %s",
			c.Level,
		)
	}

	if !slices.Contains([]string{"json", "pretty"}, c.Format) {
		return fmt.Errorf("format must be 'json' or 'pretty', got: %s", c.Format)
	}

	return nil
}

type Spotify struct {
	ClientID     string   `yaml:"-"`
	ClientSecret string   `yaml:"-"`
	Market       string   `yaml:"market"`
	Timeout      Duration `yaml:"timeout"`
	MaxRetries   uint64   `yaml:"max_retries"`
}

func (c *Spotify) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("client_id", redact.String(c.ClientID)).
		Str("client_secret", redact.String(c.ClientSecret)).
		Str("market", c.Market).
		Str("timeout", c.Timeout.String()).
		Uint64("max_retries", c.MaxRetries)
}

func (c *Spotify) setDefaults() {
	if c.Timeout.Duration == 0 {
		c.Timeout.Duration = 10 * time.Second
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
}

func (c *Spotify) validate() error {
	if c.Timeout.Duration < 0 {
		return errors.New("timeout must be greater than 0")
	}

	if c.Market != "" && len(c.Market) != 2 {
		return fmt.Errorf("market must be a two letter country code, got: %s", c.Market)
	}

	return nil
}

// HasCredentials reports whether both client credentials were provided through the environment.
func (c *Spotify) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type Downloader struct {
	OutputDir   string           `yaml:"output_dir"`
	Codec       string           `yaml:"codec"`
	Bitrate     string           `yaml:"bitrate"`
	Parallelism int              `yaml:"parallelism"`
	PoolSize    int              `yaml:"pool_size"`
	TrackJitter bool             `yaml:"track_jitter"`
	YTDLP       YTDLP            `yaml:"ytdlp"`
	Cover       Cover            `yaml:"cover"`
	Timeouts    DownloadTimeouts `yaml:"timeouts"`
}

func (c *Downloader) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("output_dir", c.OutputDir).
		Str("codec", c.Codec).
		Str("bitrate", c.Bitrate).
		Int("parallelism", c.Parallelism).
		Int("pool_size", c.PoolSize).
		Bool("track_jitter", c.TrackJitter).
		Dict("ytdlp", c.YTDLP.ToDict()).
		Dict("cover", c.Cover.ToDict()).
		Dict("timeouts", c.Timeouts.ToDict())
}

func (c *Downloader) setDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "./downloads"
	}

	if c.Codec == "" {
		c.Codec = "mp3"
	}

	if c.Bitrate == "" {
		c.Bitrate = "best"
	}

	if c.Parallelism == 0 {
		c.Parallelism = 10
	}

	if c.PoolSize == 0 {
		c.PoolSize = 4
	}

	c.YTDLP.setDefaults()
	c.Cover.setDefaults()
	c.Timeouts.setDefaults()
}

func (c *Downloader) validate() error {
	if c.Parallelism < 1 {
		return errors.New("parallelism must be greater than 0")
	}

	if c.PoolSize < 1 {
		return errors.New("pool_size must be greater than 0")
	}

	if err := c.YTDLP.validate(); nil != err {
		return fmt.Errorf("ytdlp config validation failed: %v", err)
	}

	if err := c.Cover.validate(); nil != err {
		return fmt.Errorf("cover config validation failed: %v", err)
	}

	if err := c.Timeouts.validate(); nil != err {
		return fmt.Errorf("timeouts config validation failed: %v", err)
	}

	return nil
}

type YTDLP struct {
	Executable  string   `yaml:"executable"`
	SearchEvery Duration `yaml:"search_every"`
	SearchBurst int      `yaml:"search_burst"`
}

func (c *YTDLP) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("executable", lo.Ternary(c.Executable == "", "<path>", c.Executable)).
		Str("search_every", c.SearchEvery.String()).
		Int("search_burst", c.SearchBurst)
}

func (c *YTDLP) setDefaults() {
	if c.SearchEvery.Duration == 0 {
		c.SearchEvery.Duration = 500 * time.Millisecond
	}

	if c.SearchBurst == 0 {
		c.SearchBurst = 2
	}
}

func (c *YTDLP) validate() error {
	if c.SearchEvery.Duration < 0 {
		return errors.New("search_every must be greater than 0")
	}

	if c.SearchBurst < 0 {
		return errors.New("search_burst must be greater than 0")
	}

	return nil
}

type Cover struct {
	MaxBytes     int64  `yaml:"max_bytes"`
	MaxDimension int    `yaml:"max_dimension"`
	Retries      uint64 `yaml:"retries"`
}

func (c *Cover) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int64("max_bytes", c.MaxBytes).
		Int("max_dimension", c.MaxDimension).
		Uint64("retries", c.Retries)
}

func (c *Cover) setDefaults() {
	if c.MaxBytes == 0 {
		c.MaxBytes = 20 * unit.Mebibyte
	}

	if c.MaxDimension == 0 {
		c.MaxDimension = 1400
	}

	if c.Retries == 0 {
		c.Retries = 3
	}
}

func (c *Cover) validate() error {
	if c.MaxBytes < 0 {
		return errors.New("max_bytes must be greater than 0")
	}

	if c.MaxDimension < 0 {
		return errors.New("max_dimension must be greater than 0")
	}

	return nil
}

type DownloadTimeouts struct {
	CatalogLookup int `yaml:"catalog_lookup"`
	Search        int `yaml:"search"`
	Fetch         int `yaml:"fetch"`
	DownloadCover int `yaml:"download_cover"`
}

func (c *DownloadTimeouts) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("catalog_lookup", c.CatalogLookup).
		Int("search", c.Search).
		Int("fetch", c.Fetch).
		Int("download_cover", c.DownloadCover)
}

func (c *DownloadTimeouts) setDefaults() {
	if c.CatalogLookup == 0 {
		c.CatalogLookup = 60
	}

	if c.Search == 0 {
		c.Search = 30
	}

	if c.Fetch == 0 {
		c.Fetch = 600
	}

	if c.DownloadCover == 0 {
		c.DownloadCover = 10
	}
}

func (c *DownloadTimeouts) validate() error {
	if c.CatalogLookup < 0 {
		return errors.New("catalog_lookup must be greater than 0")
	}

	if c.Search < 0 {
		return errors.New("search must be greater than 0")
	}

	if c.Fetch < 0 {
		return errors.New("fetch must be greater than 0")
	}

	if c.DownloadCover < 0 {
		return errors.New("download_cover must be greater than 0")
	}

	return nil
}

type Store struct {
	Path     string   `yaml:"path"`
	TTL      Duration `yaml:"ttl"`
	Disabled bool     `yaml:"disabled"`
}

func (c *Store) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("path", c.Path).
		Str("ttl", c.TTL.String()).
		Bool("disabled", c.Disabled)
}

func (c *Store) setDefaults() {
	if c.Path == "" {
		c.Path = "catalog.db"
	}

	if c.TTL.Duration == 0 {
		c.TTL.Duration = 24 * time.Hour
	}
}

func (c *Store) validate() error {
	if c.TTL.Duration < 0 {
		return errors.New("ttl must be greater than 0")
	}

	return nil
}

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("failed to parse duration: %v", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration: %v", err)
	}

	d.Duration = parsed

	return nil
}

// Load reads the YAML config file. A missing file is only tolerated when no explicit filename was given.
func Load(filename string) (*Config, error) {
	var (
		conf Config
		path = lo.Ternary(len(filename) > 0, filename, DefaultFilename)
	)

	data, err := os.ReadFile(path)
	switch {
	case nil == err:
		if err := yaml.Unmarshal(data, &conf); nil != err {
			return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && len(filename) == 0:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	conf.Spotify.ClientID = os.Getenv("SPOTIFY_CLIENT_ID")
	conf.Spotify.ClientSecret = os.Getenv("SPOTIFY_CLIENT_SECRET")
	conf.setDefaults()

	if err := conf.validate(); nil != err {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return &conf, nil
}
