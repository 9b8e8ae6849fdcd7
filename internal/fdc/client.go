// Package fdc is a thin client for the USDA FoodData Central REST API (v1).
//
// Only the two read endpoints the aggregator needs are covered:
//
//	GET {base}/foods/search?api_key=..&query=..&pageSize=..&dataType=..
//	GET {base}/food/{fdcId}?api_key=..
//
// Retries, backoff and status handling come from httpds; a non-2xx response
// surfaces as *httpds.StatusError.
package fdc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"nutrition/internal/datasource/httpds"
)

// DefaultBaseURL is the public FDC v1 endpoint.
const DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"

// DemoKey is the shared, heavily rate-limited key FDC accepts without signup.
const DemoKey = "DEMO_KEY"

// Page size limits of /foods/search.
const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// Data types accepted by the dataType filter.
const (
	Foundation = "Foundation"
	SRLegacy   = "SR Legacy"
	Survey     = "Survey (FNDDS)"
	Branded    = "Branded"
)

// Client issues FDC requests with one API key.
type Client struct {
	http    *httpds.Client
	baseURL string
	apiKey  string
}

// NewClient returns a Client. An empty baseURL means DefaultBaseURL and an
// empty apiKey means DemoKey.
func NewClient(hc *httpds.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		apiKey = DemoKey
	}
	return &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// SearchRequest parameters for /foods/search.
type SearchRequest struct {
	Query     string
	DataTypes []string
	PageSize  int
}

// Search runs one page of a food search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("fdc: empty query")
	}
	size := req.PageSize
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", req.Query)
	q.Set("pageSize", strconv.Itoa(size))
	for _, dt := range req.DataTypes {
		q.Add("dataType", dt)
	}

	var res SearchResult
	if err := c.http.GetJSON(ctx, c.baseURL+"/foods/search?"+q.Encode(), &res); err != nil {
		return nil, fmt.Errorf("fdc: search %q: %w", req.Query, err)
	}
	return &res, nil
}

// Food fetches the full record of one food.
func (c *Client) Food(ctx context.Context, fdcID int64) (*Food, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)

	var f Food
	u := c.baseURL + "/food/" + strconv.FormatInt(fdcID, 10) + "?" + q.Encode()
	if err := c.http.GetJSON(ctx, u, &f); err != nil {
		return nil, fmt.Errorf("fdc: food %d: %w", fdcID, err)
	}
	return &f, nil
}
