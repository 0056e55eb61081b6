// Package scryfall is a small client for the read-only card endpoints of the
// Scryfall API.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arcanaland/scrybe/internal/card"
	"github.com/arcanaland/scrybe/internal/validator"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://api.scryfall.com"

// Client talks to the card API. The zero value is not usable; use NewClient.
type Client struct {
	BaseURL       string
	UserAgent     string
	MaxPrintPages int
	HTTPClient    *http.Client
	Log           logrus.FieldLogger
}

// list is the paginated list object of the API.
type list struct {
	TotalCards int         `json:"total_cards"`
	HasMore    bool        `json:"has_more"`
	NextPage   string      `json:"next_page"`
	Data       []card.Card `json:"data"`
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		UserAgent:     userAgent,
		MaxPrintPages: 1,
		HTTPClient:    &http.Client{Timeout: timeout},
		Log:           logrus.StandardLogger(),
	}
}

// Card fetches one card by its identifier.
func (c *Client) Card(ctx context.Context, id string) (*card.Card, error) {
	out, err := c.CardRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkCard(out); err != nil {
		return nil, fmt.Errorf("fetching card %s: %w", id, err)
	}
	return out, nil
}

// CardRecord fetches one card without checking that it is usable.
func (c *Client) CardRecord(ctx context.Context, id string) (*card.Card, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("card id is required")
	}
	var out card.Card
	if err := c.get(ctx, c.BaseURL+"/cards/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("fetching card %s: %w", id, err)
	}
	return &out, nil
}

// Random fetches one random card, restricted to a color key when given.
func (c *Client) Random(ctx context.Context, color string) (*card.Card, error) {
	u := c.BaseURL + "/cards/random"
	if q := ColorQuery(color); q != "" {
		u += "?" + url.Values{"q": {q}}.Encode()
	}
	var out card.Card
	if err := c.get(ctx, u, &out); err != nil {
		return nil, fmt.Errorf("fetching random card: %w", err)
	}
	if err := checkCard(&out); err != nil {
		return nil, fmt.Errorf("fetching random card: %w", err)
	}
	return &out, nil
}

// Search returns the first page of cards matching a query expression.
// A query without matches yields ErrEmptyResult.
func (c *Client) Search(ctx context.Context, query string) ([]card.Card, error) {
	u := c.BaseURL + "/cards/search?" + url.Values{"q": {query}}.Encode()
	var out list
	if err := c.get(ctx, u, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("searching %q: %w", query, ErrEmptyResult)
		}
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("searching %q: %w", query, ErrEmptyResult)
	}
	return out.Data, nil
}

// Prints follows a prints-collection URI and returns every print found on
// up to MaxPrintPages pages.
func (c *Client) Prints(ctx context.Context, uri string) ([]card.Card, error) {
	pages := c.MaxPrintPages
	if pages < 1 {
		pages = 1
	}

	var prints []card.Card
	total := 0
	next := uri
	for page := 0; page < pages && next != ""; page++ {
		var out list
		if err := c.get(ctx, next, &out); err != nil {
			return nil, fmt.Errorf("fetching prints page %d: %w", page+1, err)
		}
		prints = append(prints, out.Data...)
		total = out.TotalCards
		next = ""
		if out.HasMore {
			next = out.NextPage
		}
	}

	c.logger().WithFields(logrus.Fields{
		"uri":         uri,
		"prints":      len(prints),
		"total_cards": total,
	}).Debug("Fetched prints")
	return prints, nil
}

func (c *Client) get(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	log := c.logger().WithField("url", u)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		log.WithField("error", err).Debug("Request failed")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Object != "error" {
			apiErr = &APIError{Object: "error", Code: http.StatusText(resp.StatusCode)}
		}
		apiErr.Status = resp.StatusCode
		log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"code":   apiErr.Code,
		}).Debug("API returned an error")
		return apiErr
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.StandardLogger()
}

func checkCard(c *card.Card) error {
	res := validator.ValidateCard(c)
	if !res.Valid() {
		return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(res.Errors, ", "))
	}
	return nil
}
