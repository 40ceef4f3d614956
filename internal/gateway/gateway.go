// Package gateway issues the CRUD operations of the admin API and
// normalizes its response envelopes and error bodies. It is the only
// package that talks HTTP to the back office.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/labadmin/internal/config"
	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/apierr"
	"github.com/jwalitptl/labadmin/pkg/circuitbreaker"
	"github.com/jwalitptl/labadmin/pkg/logger"
)

// Attachment is an unsaved binary staged for a multipart save.
type Attachment struct {
	Filename string
	Content  []byte
}

// Gateway is the remote data gateway of the admin client.
type Gateway struct {
	base    *url.URL
	client  *http.Client
	session *Session
	limiter *rate.Limiter
	breaker *circuitbreaker.Breaker
	lists   *cache.Cache
	log     *logger.Logger
}

// listCacheTTL keeps list reads cheap while browsing; any mutation of
// the resource invalidates its entry.
const listCacheTTL = 30 * time.Second

// The breaker only counts transport failures, never HTTP error
// statuses: a reachable server that rejects a request is healthy.
const (
	breakerThreshold = 5
	breakerCooldown  = 15 * time.Second
)

// New builds a gateway from the API configuration.
func New(cfg config.APIConfig, log *logger.Logger) (*Gateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 10
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Gateway{
		base:    base,
		client:  client,
		session: NewSession(base, cfg.CSRFPath, cfg.Token, client),
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		breaker: circuitbreaker.New(breakerThreshold, breakerCooldown),
		lists:   cache.New(listCacheTTL, time.Minute),
		log:     log,
	}, nil
}

// Session exposes the shared session, mainly for re-auth prompts.
func (g *Gateway) Session() *Session { return g.session }

// List fetches all records of a resource, serving a cached copy while
// it is fresh.
func (g *Gateway) List(ctx context.Context, res model.Resource) ([]model.Record, error) {
	if v, ok := g.lists.Get(res.Name); ok {
		return v.([]model.Record), nil
	}

	body, err := g.do(ctx, http.MethodGet, res.Path, nil, res.Name)
	if err != nil {
		return nil, err
	}
	rows, err := NormalizeList(res.Name, body)
	if err != nil {
		g.log.Error(err, "unexpected list envelope", "resource", res.Name)
		return nil, err
	}
	g.lists.Set(res.Name, rows, cache.DefaultExpiration)
	return rows, nil
}

// Invalidate drops the cached list of a resource so the next List hits
// the server. Explicit user refreshes go through here; without it they
// would be answered from the cache for its whole TTL.
func (g *Gateway) Invalidate(res model.Resource) {
	g.lists.Delete(res.Name)
}

// Get fetches one record.
func (g *Gateway) Get(ctx context.Context, res model.Resource, id int64) (model.Record, error) {
	body, err := g.do(ctx, http.MethodGet, res.ItemPath(id), nil, res.Name)
	if err != nil {
		return nil, err
	}
	return NormalizeOne(body)
}

// Create posts a new record and returns the server's canonical copy.
func (g *Gateway) Create(ctx context.Context, res model.Resource, rec model.Record) (model.Record, error) {
	body, err := g.doMutation(ctx, http.MethodPost, res.Path, rec, res.Name)
	if err != nil {
		return nil, err
	}
	g.lists.Delete(res.Name)
	return NormalizeOne(body)
}

// Update puts a record and returns the server's canonical copy.
func (g *Gateway) Update(ctx context.Context, res model.Resource, id int64, rec model.Record) (model.Record, error) {
	body, err := g.doMutation(ctx, http.MethodPut, res.ItemPath(id), rec, res.Name)
	if err != nil {
		return nil, err
	}
	g.lists.Delete(res.Name)
	return NormalizeOne(body)
}

// Delete removes a record.
func (g *Gateway) Delete(ctx context.Context, res model.Resource, id int64) error {
	if _, err := g.doMutation(ctx, http.MethodDelete, res.ItemPath(id), nil, res.Name); err != nil {
		return err
	}
	g.lists.Delete(res.Name)
	return nil
}

// LoadSettings fetches a settings page's singleton record.
func (g *Gateway) LoadSettings(ctx context.Context, page model.SettingsPage) (model.Record, error) {
	body, err := g.do(ctx, http.MethodGet, page.Path, nil, page.Name)
	if err != nil {
		return nil, err
	}
	return NormalizeOne(body)
}

// SaveSettings serializes text fields and staged attachments as
// multipart form data and returns the canonical record. An attachment
// for a key takes precedence over any text value for that key.
func (g *Gateway) SaveSettings(ctx context.Context, page model.SettingsPage, fields map[string]string, attachments map[string]Attachment) (model.Record, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		if _, staged := attachments[key]; staged {
			continue
		}
		if err := mw.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", key, err)
		}
	}
	for key, att := range attachments {
		fw, err := mw.CreateFormFile(key, att.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attachment %s: %w", key, err)
		}
		if _, err := fw.Write(att.Content); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", key, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	body, err := g.doRaw(ctx, http.MethodPost, page.Path, &buf, mw.FormDataContentType(), page.Name, true)
	if err != nil {
		return nil, err
	}
	return NormalizeOne(body)
}

// do performs a read request.
func (g *Gateway) do(ctx context.Context, method, path string, payload interface{}, resource string) ([]byte, error) {
	return g.encodeAndDo(ctx, method, path, payload, resource, false)
}

// doMutation performs a write request: the bearer token is checked and
// the CSRF token acquired first.
func (g *Gateway) doMutation(ctx context.Context, method, path string, payload interface{}, resource string) ([]byte, error) {
	return g.encodeAndDo(ctx, method, path, payload, resource, true)
}

func (g *Gateway) encodeAndDo(ctx context.Context, method, path string, payload interface{}, resource string, mutating bool) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	return g.doRaw(ctx, method, path, body, "application/json", resource, mutating)
}

func (g *Gateway) doRaw(ctx context.Context, method, path string, body io.Reader, contentType, resource string, mutating bool) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	var csrf string
	if mutating {
		if err := g.session.CheckBearer(); err != nil {
			return nil, err
		}
		token, err := g.session.EnsureCSRF(ctx)
		if err != nil {
			return nil, err
		}
		csrf = token
	}

	endpoint := g.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if g.session.Bearer() != "" {
		req.Header.Set("Authorization", "Bearer "+g.session.Bearer())
	}
	if csrf != "" {
		req.Header.Set("X-XSRF-TOKEN", csrf)
	}

	if err := g.breaker.Allow(); err != nil {
		return nil, apierr.Network(err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.breaker.Failure()
		return nil, apierr.Network(err)
	}
	g.breaker.Success()
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Network(err)
	}

	if resp.StatusCode >= 400 {
		apiErr := apierr.FromResponse(resource, resp.StatusCode, respBody)
		g.log.Debug("request failed",
			"method", method, "path", path, "status", resp.StatusCode)
		return nil, apiErr
	}
	return respBody, nil
}
