// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"net/http"

	"github.com/spf13/pflag"

	"github.com/inferex/inferex/lib/api"
	"github.com/inferex/inferex/lib/config"
)

// ClientOptions holds the flags shared by every command that talks to
// the API. Embed it in a params struct:
//
//	type listParams struct {
//	    cli.ClientOptions
//	    cli.OutputFormat
//	}
//
//	// In Run:
//	client, err := params.Connect(logger)
type ClientOptions struct {
	ConfigPath string
	APIURL     string
	Token      string
	Verbose    bool

	level *slog.LevelVar
}

// AddFlags registers --config, --api, --token, and --verbose.
func (o *ClientOptions) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.ConfigPath, "config", "", "client configuration file (default $"+config.EnvConfig+")")
	flagSet.StringVar(&o.APIURL, "api", "", "API base URL (overrides $"+config.EnvAPI+")")
	flagSet.StringVar(&o.Token, "token", "", "bearer token (overrides $"+config.EnvToken+" and the session file)")
	flagSet.BoolVarP(&o.Verbose, "verbose", "v", false, "log debug output to stderr")
}

// ConfigureLevel remembers the command's level so that LoadConfig can
// apply log.level, and switches to debug for --verbose.
func (o *ClientOptions) ConfigureLevel(level *slog.LevelVar) {
	o.level = level
	if o.Verbose {
		level.Set(slog.LevelDebug)
	}
}

// LoadConfig resolves the client configuration: the file named by
// --config or INFEREX_CONFIG, then INFEREX_* variables, then flags.
func (o *ClientOptions) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, Validation("loading configuration: %w", err)
	}
	if o.APIURL != "" {
		cfg.API.URL = o.APIURL
	}
	if o.Token != "" {
		cfg.Auth.Token = o.Token
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}
	if o.level != nil && !o.Verbose {
		if level, ok := ParseLevel(cfg.Log.Level); ok {
			o.level.Set(level)
		}
	}
	return cfg, nil
}

// Client is an authenticated API session together with the
// configuration it was built from.
type Client struct {
	*api.Session
	Config      *config.Config
	SessionFile SessionFile
}

// Connect loads the configuration and opens an API session. The bearer
// token is taken from --token, then INFEREX_TOKEN or auth.token, then
// the session file. Tokens obtained by re-authentication with the
// configured username and password are written back to the session
// file.
func (o *ClientOptions) Connect(logger *slog.Logger) (*Client, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	return Open(cfg, logger)
}

// Open creates a Client from an already resolved configuration.
func Open(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	path, err := SessionFilePath(cfg.Auth.SessionFile)
	if err != nil {
		return nil, err
	}
	sessionFile := SessionFile{Path: path}

	token := cfg.Auth.Token
	if token == "" {
		stored, err := sessionFile.Token()
		if err != nil {
			logger.Warn("ignoring unreadable session file", "path", path, "error", err)
		}
		token = stored
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, Validation("%w", err)
	}

	session, err := api.NewSession(api.Config{
		BaseURL:    cfg.API.URL,
		APIVersion: cfg.API.Version,
		Token:      token,
		Credentials: api.StaticCredentials{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		},
		TokenStore: sessionFile,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, Validation("%w", err)
	}
	return &Client{Session: session, Config: cfg, SessionFile: sessionFile}, nil
}
