package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// Endpoints of the daemon's REST surface used by synctrayd.
const (
	endpointPing        = "/rest/system/ping"
	endpointVersion     = "/rest/system/version"
	endpointStatus      = "/rest/system/status"
	endpointConfig      = "/rest/system/config"
	endpointDebug       = "/rest/system/debug"
	endpointShutdown    = "/rest/system/shutdown"
	endpointRestart     = "/rest/system/restart"
	endpointConnections = "/rest/system/connections"
	endpointEvents      = "/rest/events"
	endpointScan        = "/rest/db/scan"
	endpointIgnores     = "/rest/db/ignores"
)

// eventPollTimeout is the long-poll timeout requested from the events
// endpoint, in seconds.
const eventPollTimeout = 10

// Client talks to one daemon instance at a fixed base URL. Create through
// [Factory], which verifies connectivity first.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     log.Logger
}

// NewClient creates a client without probing. baseURL is e.g.
// "http://127.0.0.1:8384".
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Ping checks that the daemon answers on its API.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, endpointPing, nil, nil)
}

// Shutdown asks the daemon to exit gracefully.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.post(ctx, endpointShutdown, nil)
}

// Restart asks the daemon to restart itself.
func (c *Client) Restart(ctx context.Context) error {
	return c.post(ctx, endpointRestart, nil)
}

// Scan requests a rescan of subPath inside the given folder. An empty
// subPath rescans the whole folder.
func (c *Client) Scan(ctx context.Context, folderID, subPath string) error {
	q := url.Values{"folder": {folderID}}
	if subPath != "" {
		q.Set("sub", subPath)
	}
	return c.post(ctx, endpointScan, q)
}

// FetchVersion fetches the daemon's version report.
func (c *Client) FetchVersion(ctx context.Context) (domain.VersionInfo, error) {
	var payload struct {
		Version     string `json:"version"`
		LongVersion string `json:"longVersion"`
	}
	if err := c.get(ctx, endpointVersion, nil, &payload); err != nil {
		return domain.VersionInfo{}, err
	}
	return domain.VersionInfo{Version: payload.Version, LongVersion: payload.LongVersion}, nil
}

// FetchSystemInfo fetches the daemon's system status.
func (c *Client) FetchSystemInfo(ctx context.Context) (domain.SystemInfo, error) {
	var payload struct {
		MyID  string `json:"myID"`
		Tilde string `json:"tilde"`
	}
	if err := c.get(ctx, endpointStatus, nil, &payload); err != nil {
		return domain.SystemInfo{}, err
	}
	return domain.SystemInfo{MyID: payload.MyID, Tilde: payload.Tilde}, nil
}

// FetchConfig fetches the daemon's synchronization configuration.
func (c *Client) FetchConfig(ctx context.Context) (domain.SyncConfig, error) {
	var payload struct {
		Folders []struct {
			ID      string `json:"id"`
			Label   string `json:"label"`
			Path    string `json:"path"`
			Devices []struct {
				DeviceID string `json:"deviceID"`
			} `json:"devices"`
		} `json:"folders"`
		Devices []struct {
			DeviceID string `json:"deviceID"`
			Name     string `json:"name"`
		} `json:"devices"`
	}
	if err := c.get(ctx, endpointConfig, nil, &payload); err != nil {
		return domain.SyncConfig{}, err
	}

	cfg := domain.SyncConfig{}
	for _, f := range payload.Folders {
		folder := domain.FolderConfig{ID: f.ID, Label: f.Label, Path: f.Path}
		for _, d := range f.Devices {
			folder.Devices = append(folder.Devices, d.DeviceID)
		}
		cfg.Folders = append(cfg.Folders, folder)
	}
	for _, d := range payload.Devices {
		cfg.Devices = append(cfg.Devices, domain.DeviceConfig{ID: d.DeviceID, Name: d.Name})
	}
	return cfg, nil
}

// FetchDebugFacilities fetches the daemon's debug facility capabilities.
// Daemons predating the endpoint report 404; that is mapped to an empty
// capability set rather than an error.
func (c *Client) FetchDebugFacilities(ctx context.Context) (domain.DebugFacilities, error) {
	var payload struct {
		Enabled    []string          `json:"enabled"`
		Facilities map[string]string `json:"facilities"`
	}
	err := c.get(ctx, endpointDebug, nil, &payload)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return domain.DebugFacilities{}, nil
		}
		return domain.DebugFacilities{}, err
	}
	return domain.DebugFacilities{Enabled: payload.Enabled, Available: payload.Facilities}, nil
}

// FetchIgnores fetches one folder's ignore patterns.
func (c *Client) FetchIgnores(ctx context.Context, folderID string) (domain.Ignores, error) {
	var payload struct {
		Ignore []string `json:"ignore"`
	}
	q := url.Values{"folder": {folderID}}
	if err := c.get(ctx, endpointIgnores, q, &payload); err != nil {
		return domain.Ignores{}, err
	}
	return domain.Ignores{Patterns: payload.Ignore}, nil
}

// FetchEvents long-polls the event stream for events after since.
func (c *Client) FetchEvents(ctx context.Context, since int64) ([]domain.Event, error) {
	var payload []struct {
		ID   int64                  `json:"id"`
		Type string                 `json:"type"`
		Time time.Time              `json:"time"`
		Data map[string]interface{} `json:"data"`
	}
	q := url.Values{
		"since":   {strconv.FormatInt(since, 10)},
		"timeout": {strconv.Itoa(eventPollTimeout)},
	}
	if err := c.get(ctx, endpointEvents, q, &payload); err != nil {
		return nil, err
	}

	events := make([]domain.Event, len(payload))
	for i, e := range payload {
		events[i] = domain.Event{ID: e.ID, Type: e.Type, Time: e.Time, Data: e.Data}
	}
	return events, nil
}

// FetchConnections fetches the aggregate transfer counters.
func (c *Client) FetchConnections(ctx context.Context) (domain.ConnectionTotals, error) {
	var payload struct {
		Total struct {
			InBytesTotal  int64     `json:"inBytesTotal"`
			OutBytesTotal int64     `json:"outBytesTotal"`
			At            time.Time `json:"at"`
		} `json:"total"`
	}
	if err := c.get(ctx, endpointConnections, nil, &payload); err != nil {
		return domain.ConnectionTotals{}, err
	}
	return domain.ConnectionTotals{
		InBytesTotal:  payload.Total.InBytesTotal,
		OutBytesTotal: payload.Total.OutBytesTotal,
		At:            payload.Total.At,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values) error {
	return c.do(ctx, http.MethodPost, path, query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("daemon rejected request",
			log.String("method", method),
			log.String("path", path),
			log.Int("status", resp.StatusCode),
		)
		return &domain.APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
