package config

import (
	"time"

	"gradtrack/internal/sftpclient"
)

const (
	BackendHTTP   = "http"
	BackendSQLite = "sqlite"

	envPrefix      = "GRADTRACK"
	defaultTimeout = 30 * time.Second
)

type Config struct {
	Store            StoreConfig `mapstructure:"store"`
	FallbackToSample bool        `mapstructure:"fallback_to_sample"`
	Log              LogConfig   `mapstructure:"log"`
	SFTP             SFTPConfig  `mapstructure:"sftp"`
}

type StoreConfig struct {
	// Backend is "http" (the spreadsheet API) or "sqlite" (a local file).
	Backend     string        `mapstructure:"backend"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	SQLitePath  string        `mapstructure:"sqlite_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type SFTPConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	User                  string `mapstructure:"user"`
	Pass                  string `mapstructure:"pass"`
	Dir                   string `mapstructure:"dir"`
	KnownHosts            string `mapstructure:"known_hosts"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key"`
}

func (s SFTPConfig) Client() sftpclient.Config {
	return sftpclient.Config{
		Host:                  s.Host,
		Port:                  s.Port,
		User:                  s.User,
		Pass:                  s.Pass,
		RemoteDir:             s.Dir,
		KnownHosts:            s.KnownHosts,
		InsecureIgnoreHostKey: s.InsecureIgnoreHostKey,
	}
}

// defaults doubles as the key list viper needs to bind env vars on Unmarshal.
var defaults = map[string]any{
	"store.backend":                 BackendHTTP,
	"store.base_url":                "http://localhost:8000",
	"store.timeout":                 "30s",
	"store.max_attempts":            1,
	"store.sqlite_path":             "data/programs.db",
	"fallback_to_sample":            true,
	"log.level":                     "info",
	"log.format":                    "console",
	"sftp.host":                     "",
	"sftp.port":                     22,
	"sftp.user":                     "",
	"sftp.pass":                     "",
	"sftp.dir":                      "/",
	"sftp.known_hosts":              "",
	"sftp.insecure_ignore_host_key": false,
}
