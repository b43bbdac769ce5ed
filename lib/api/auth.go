// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
)

// CredentialSource supplies a username and password for logging in
// without user interaction.
type CredentialSource interface {
	Credentials() (username, password string, err error)
}

// EnvCredentials reads INFEREX_USERNAME and INFEREX_PASSWORD.
type EnvCredentials struct{}

// Credentials returns ErrNoCredentials unless both variables are set.
func (EnvCredentials) Credentials() (string, string, error) {
	username, password := os.Getenv("INFEREX_USERNAME"), os.Getenv("INFEREX_PASSWORD")
	if username == "" || password == "" {
		return "", "", ErrNoCredentials
	}
	return username, password, nil
}

// StaticCredentials is a fixed username and password, typically taken
// from the client configuration file.
type StaticCredentials struct {
	Username string
	Password string
}

// Credentials returns ErrNoCredentials if either field is empty.
func (c StaticCredentials) Credentials() (string, string, error) {
	if c.Username == "" || c.Password == "" {
		return "", "", ErrNoCredentials
	}
	return c.Username, c.Password, nil
}

// TokenStore persists a bearer token obtained by logging in.
type TokenStore interface {
	SaveToken(token string) error
}

// Login exchanges a username and password for an access token. On
// success the token becomes the session token and is handed to the
// session's TokenStore.
func (s *Session) Login(ctx context.Context, username, password string) (string, error) {
	token, err := s.fetchToken(ctx, username, password)
	if err != nil {
		return "", err
	}
	s.storeToken(token)
	return token, nil
}

func (s *Session) fetchToken(ctx context.Context, username, password string) (string, error) {
	response, err := s.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "login",
		Body:   FormBody(url.Values{"username": {username}, "password": {password}}),
		NoAuth: true,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := response.Decode(&result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("login response (request %s) has no access_token", response.RequestID)
	}
	return result.AccessToken, nil
}

func (s *Session) storeToken(token string) {
	s.SetToken(token)
	if s.tokenStore == nil {
		return
	}
	if err := s.tokenStore.SaveToken(token); err != nil {
		s.logger.Warn("saving access token failed", "error", err)
	}
}

// reauthenticate logs in from the session's credentials after a 401.
// seen is the token generation the rejected request carried; if the
// token has changed since, another request already logged in and the
// caller only needs to replay.
func (s *Session) reauthenticate(ctx context.Context, seen uint64) error {
	s.reauthMu.Lock()
	defer s.reauthMu.Unlock()

	if _, generation := s.currentToken(); generation != seen {
		return nil
	}

	username, password, err := s.credentials.Credentials()
	if err != nil {
		return err
	}
	token, err := s.fetchToken(ctx, username, password)
	if err != nil {
		return fmt.Errorf("logging in as %s: %w", username, err)
	}
	s.storeToken(token)
	s.logger.Info("logged in again after 401", "username", username)
	return nil
}
