// Package edsm resolves star system coordinates from an EDSM-compatible
// public API. Unknown systems resolve to nil without error, transport or
// status failures return an error so callers can tell the two apart.
package edsm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/edtools/wingbot/pkg/request"
	"github.com/edtools/wingbot/pkg/space"
)

const DefaultURL = "https://www.edsm.net"

type SystemInfo struct {
	Name         string       `json:"name"`
	Coords       *space.Point `json:"coords"`
	CoordsLocked bool         `json:"coordsLocked"`
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Second * 10},
		logger:  slog.Default().With("logger", "edsm"),
	}
}

// SystemPosition looks the system up by name. A nil, nil result means the
// provider does not know the system.
func (c *Client) SystemPosition(ctx context.Context, name string) (*SystemInfo, error) {
	if name == "" {
		return nil, nil
	}

	var info SystemInfo

	err := request.New(c.client, c.logger).
		URL(c.baseURL+"/api-v1/system").
		Args(map[string]string{
			"systemName":      name,
			"showCoordinates": "1",
		}).
		GetJSON(ctx, &info)

	if err != nil {
		return nil, fmt.Errorf("system lookup %s: %w", name, err)
	}

	// the API answers an unknown system with an empty object
	if info.Name == "" {
		return nil, nil
	}

	return &info, nil
}
