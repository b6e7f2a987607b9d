package config

import "time"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Listing  ListingConfig  `mapstructure:"listing"`
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type SchemaConfig struct {
	IncludeViews  bool     `mapstructure:"include_views"`
	ExcludeTables []string `mapstructure:"exclude_tables"`
	IncludeTables []string `mapstructure:"include_tables"`
}

type ListingConfig struct {
	// ObjectLayout is "current" or "legacy".
	ObjectLayout string `mapstructure:"object_layout"`
	// Fields overrides the filter column of a page by header name,
	// e.g. {"routines": "Type"}.
	Fields map[string]string `mapstructure:"fields"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}
