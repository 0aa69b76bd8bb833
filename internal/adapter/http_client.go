// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter implements the store repositories against a PostgREST-style
// backend-as-a-service over HTTP.
//
// Every table is exposed as /rest/v1/<table>; rows are filtered with
// "<column>=eq.<value>" query parameters and writes ask for the affected rows
// back with "Prefer: return=representation".
package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-field-crypt/internal/config"
	"github.com/MKhiriev/go-field-crypt/internal/logger"
	"github.com/MKhiriev/go-field-crypt/internal/store"
)

const restPrefix = "/rest/v1/"

// Client is the shared HTTP client of the adapter repositories.
type Client struct {
	client *resty.Client
	apiKey string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewClient constructs a [Client] for cfg.HTTPAddress. It returns an error
// when the address is empty or cannot be parsed as a URL.
func NewClient(cfg config.Adapter, log *logger.Logger) (*Client, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", "application/json")

	c := &Client{client: cli, apiKey: cfg.APIKey, logger: log}
	c.SetToken(cfg.AccessToken)

	return c, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken stores the bearer token of the signed-in user. Until one is set
// the API key is sent as bearer.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return c.apiKey
	}
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetHeader("apikey", c.apiKey)
	}
	if token := c.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func (c *Client) writeRequest(ctx context.Context) *resty.Request {
	return c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation")
}

func eq(value string) string {
	return "eq." + value
}

func tablePath(table string) string {
	return restPrefix + table
}

// NewHTTPStorages returns repositories served by the HTTP backend.
func NewHTTPStorages(cfg config.Adapter, log *logger.Logger) (*store.Storages, error) {
	c, err := NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	return store.NewStorages(NewProfileRepository(c), NewRecordRepository(c), nil), nil
}
