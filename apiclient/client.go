// Package apiclient talks to the Notate REST backend on behalf of the
// dashboard. Every request carries the current session token.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/jrsteele09/notate-dashboard/token"
	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/rs/zerolog/log"
)

const (
	RouteLogin = "/api/auth/login"
	RouteUsers = "/api/auth/users"
	RouteStats = "/api/stats/"
)

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client; its Transport is
// wrapped with the bearer transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.base = hc
	}
}

// WithCache sets the GET response cache
func WithCache(cache *Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithTimeout sets the per request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

type Client struct {
	baseURL string
	store   token.Store
	base    *http.Client
	authed  *http.Client
	cache   *Cache
	timeout time.Duration
}

func New(baseURL string, store token.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		store:   store,
		base:    &http.Client{},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewCache(0)
	}

	rt := c.base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	c.authed = &http.Client{
		Transport:     &bearerTransport{store: store, base: rt},
		CheckRedirect: c.base.CheckRedirect,
		Jar:           c.base.Jar,
	}
	return c
}

// Cache exposes the response cache so it can be cleared on logout
func (c *Client) Cache() *Cache {
	return c.cache
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token. It does not store the
// token; that is the caller's job.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", apperrors.Wrapf(err, "encode login request")
	}
	req, cancel, err := c.newRequest(ctx, http.MethodPost, RouteLogin, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer cancel()

	// credentials go out without any stale bearer token
	resp, err := c.base.Do(req)
	if err != nil {
		return "", apperrors.Wrapf(err, "login")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", apperrors.Wrapf(err, "decode login response")
	}
	if lr.Token == "" {
		return "", apperrors.Wrapf(apperrors.ErrBackend, "login response has no token")
	}
	return lr.Token, nil
}

// Get decodes the JSON body at path into out, going through the cache
func (c *Client) Get(ctx context.Context, path string, out any) error {
	data, err := c.cache.Fetch(path, func() ([]byte, error) {
		data, _, err := c.do(ctx, http.MethodGet, path, nil)
		return data, err
	})
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodDelete, path, nil, out)
}

// Blob is a raw response body, e.g. a submitted file
type Blob struct {
	ContentType string
	Data        []byte
}

// GetBlob fetches a binary resource; blobs are never cached
func (c *Client) GetBlob(ctx context.Context, path string) (Blob, error) {
	data, header, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Blob{}, err
	}
	return Blob{ContentType: header.Get("Content-Type"), Data: data}, nil
}

// DashboardStats are the counters shown on a role's landing page
type DashboardStats struct {
	Enrollments        int      `json:"enrollments"`
	PendingSubmissions int      `json:"pendingSubmissions"`
	AverageGrade       *float64 `json:"averageGrade"`
	UpcomingDeadlines  int      `json:"upcomingDeadlines"`
}

func (c *Client) Stats(ctx context.Context, role users.Role) (DashboardStats, error) {
	var stats DashboardStats
	err := c.Get(ctx, RouteStats+string(role), &stats)
	return stats, err
}

// Users lists the backend's accounts, filtered by role when one is given.
// Only admins may call it.
func (c *Client) Users(ctx context.Context, role users.Role) ([]users.User, error) {
	path := RouteUsers
	if role != "" {
		path += "?role=" + url.QueryEscape(string(role))
	}
	var list []users.User
	err := c.Get(ctx, path, &list)
	return list, err
}

// send performs a mutation and drops cached reads, which may now be stale
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrapf(err, "encode %s %s", method, path)
		}
		body = bytes.NewReader(data)
	}

	data, _, err := c.do(ctx, method, path, body)
	c.cache.Clear()
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, http.Header, error) {
	req, cancel, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, nil, err
	}
	defer cancel()

	start := time.Now()
	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, nil, apperrors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, newAPIError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.Wrapf(err, "read %s %s", method, path)
	}
	return data, resp.Header, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		cancel()
		return nil, nil, apperrors.Wrapf(err, "build request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, cancel, nil
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
