// Package twitter implements the remote capability surface the fetch
// and destroy loops consume, over the v1.1 REST API with OAuth1
// request signing.
package twitter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gomodule/oauth1/oauth"

	"github.com/eigenmagic/forget/internal/types"
)

const defaultBaseURL = "https://api.twitter.com/1.1"

// createdAtLayout is the encoding the API uses for timestamps.
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Credentials holds the four OAuth1 secrets from the config file.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Client talks to the API for one content kind.
type Client struct {
	kind    types.Kind
	baseURL string
	http    *http.Client
	oauth   oauth.Client
	access  oauth.Credentials
}

// Option adjusts a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root. Tests use it
// to talk to a local server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a Client for one content kind.
func New(kind types.Kind, creds Credentials, opts ...Option) *Client {
	c := &Client{
		kind:    kind,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		oauth: oauth.Client{
			SignatureMethod: oauth.HMACSHA1,
			Credentials: oauth.Credentials{
				Token:  creds.ConsumerKey,
				Secret: creds.ConsumerSecret,
			},
		},
		access: oauth.Credentials{
			Token:  creds.AccessToken,
			Secret: creds.AccessSecret,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// status is the wire shape shared by timeline and favorites responses.
type status struct {
	ID        uint64 `json:"id"`
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
	FullText  string `json:"full_text"`
	User      struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

func (s status) item() (types.Item, error) {
	item := types.Item{
		ID:         s.ID,
		ScreenName: s.User.ScreenName,
		Text:       s.Text,
	}
	if item.Text == "" {
		item.Text = s.FullText
	}
	if s.CreatedAt != "" {
		t, err := time.Parse(createdAtLayout, s.CreatedAt)
		if err != nil {
			return types.Item{}, fmt.Errorf("parse created_at %q: %w", s.CreatedAt, err)
		}
		item.CreatedAt = &t
	}
	return item, nil
}

// ListOlder fetches up to count items with ids at or below maxID.
// A zero maxID fetches the newest page. Not available for dms, which
// page by cursor (ListPage).
func (c *Client) ListOlder(owner string, count int, maxID uint64) ([]types.Item, error) {
	form := url.Values{
		"screen_name": {owner},
		"count":       {strconv.Itoa(count)},
	}
	if maxID > 0 {
		form.Set("max_id", strconv.FormatUint(maxID, 10))
	}
	return c.listStatuses(form)
}

// ListNewer fetches up to count items with ids above sinceID.
func (c *Client) ListNewer(owner string, count int, sinceID uint64) ([]types.Item, error) {
	form := url.Values{
		"screen_name": {owner},
		"count":       {strconv.Itoa(count)},
	}
	if sinceID > 0 {
		form.Set("since_id", strconv.FormatUint(sinceID, 10))
	}
	return c.listStatuses(form)
}

func (c *Client) listStatuses(form url.Values) ([]types.Item, error) {
	var path string
	switch c.kind {
	case types.KindLikes:
		path = "/favorites/list.json"
		form.Set("include_entities", "false")
	case types.KindTweets:
		path = "/statuses/user_timeline.json"
	default:
		return nil, fmt.Errorf("%s kind does not support id-bounded listing", c.kind)
	}

	body, err := c.get(path, form)
	if err != nil {
		return nil, err
	}

	var statuses []status
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	items := make([]types.Item, 0, len(statuses))
	for _, s := range statuses {
		item, err := s.item()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// dmEvents is the wire shape of the dm events listing.
type dmEvents struct {
	Events []struct {
		Type             string `json:"type"`
		ID               string `json:"id"`
		CreatedTimestamp string `json:"created_timestamp"`
		MessageCreate    struct {
			SenderID string `json:"sender_id"`
			Target   struct {
				RecipientID string `json:"recipient_id"`
			} `json:"target"`
			MessageData struct {
				Text string `json:"text"`
			} `json:"message_data"`
		} `json:"message_create"`
	} `json:"events"`
	NextCursor string `json:"next_cursor"`
}

// ListPage fetches one cursor page of dm events. The API only serves
// the last 30 days, newest first. An empty next cursor means the last
// page.
func (c *Client) ListPage(owner string, count int, cursor string) ([]types.Item, string, error) {
	form := url.Values{"count": {strconv.Itoa(count)}}
	if cursor != "" {
		form.Set("cursor", cursor)
	}

	body, err := c.get("/direct_messages/events/list.json", form)
	if err != nil {
		return nil, "", err
	}

	var page dmEvents
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", fmt.Errorf("decode dm listing: %w", err)
	}

	var items []types.Item
	for _, ev := range page.Events {
		if ev.Type != "message_create" {
			continue
		}
		id, err := strconv.ParseUint(ev.ID, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("dm event id %q: %w", ev.ID, err)
		}
		item := types.Item{ID: id, ScreenName: owner, Text: ev.MessageCreate.MessageData.Text}
		// created_timestamp is epoch milliseconds.
		if ms, err := strconv.ParseInt(ev.CreatedTimestamp, 10, 64); err == nil {
			t := time.UnixMilli(ms).UTC()
			item.CreatedAt = &t
		}
		if sender, err := strconv.ParseInt(ev.MessageCreate.SenderID, 10, 64); err == nil {
			item.SenderID = &sender
		}
		if recipient, err := strconv.ParseInt(ev.MessageCreate.Target.RecipientID, 10, 64); err == nil {
			item.RecipientID = &recipient
		}
		items = append(items, item)
	}
	return items, page.NextCursor, nil
}

// Delete removes one item remotely. Failures carry the API's error
// codes as a *types.APIError so the destroy loop can classify them.
func (c *Client) Delete(id uint64) error {
	idStr := strconv.FormatUint(id, 10)
	switch c.kind {
	case types.KindTweets:
		_, err := c.post("/statuses/destroy/"+idStr+".json", url.Values{})
		return err
	case types.KindLikes:
		_, err := c.post("/favorites/destroy.json", url.Values{"id": {idStr}})
		return err
	default:
		return c.delete("/direct_messages/events/destroy.json", url.Values{"id": {idStr}})
	}
}

// Lookup fetches creation data for up to 100 ids in one call.
// Ids the API won't show (deleted, protected, suspended) are simply
// absent from the result.
func (c *Client) Lookup(ids []uint64) ([]types.Item, error) {
	if len(ids) > 100 {
		return nil, fmt.Errorf("lookup limited to 100 ids, got %d", len(ids))
	}
	joined := ""
	for i, id := range ids {
		if i > 0 {
			joined += ","
		}
		joined += strconv.FormatUint(id, 10)
	}

	body, err := c.get("/statuses/lookup.json", url.Values{"id": {joined}})
	if err != nil {
		return nil, err
	}

	var statuses []status
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("decode lookup: %w", err)
	}
	items := make([]types.Item, 0, len(statuses))
	for _, s := range statuses {
		item, err := s.item()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// UserID resolves a screen name to the account's numeric id.
func (c *Client) UserID(owner string) (int64, error) {
	body, err := c.get("/users/show.json", url.Values{"screen_name": {owner}})
	if err != nil {
		return 0, err
	}
	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return 0, fmt.Errorf("decode user: %w", err)
	}
	return user.ID, nil
}

func (c *Client) get(path string, form url.Values) ([]byte, error) {
	resp, err := c.oauth.Get(c.http, &c.access, c.baseURL+path, form)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

func (c *Client) post(path string, form url.Values) ([]byte, error) {
	resp, err := c.oauth.Post(c.http, &c.access, c.baseURL+path, form)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

func (c *Client) delete(path string, form url.Values) error {
	resp, err := c.oauth.Delete(c.http, &c.access, c.baseURL+path, form)
	if err != nil {
		return err
	}
	_, err = readResponse(resp)
	return err
}

// readResponse drains the body and converts non-2xx responses into a
// typed *types.APIError with the codes parsed from the error payload.
func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	apiErr := &types.APIError{Status: resp.StatusCode}
	var parsed struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, e := range parsed.Errors {
			apiErr.Codes = append(apiErr.Codes, e.Code)
			if apiErr.Message == "" {
				apiErr.Message = e.Message
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	return nil, apiErr
}
