// Package wiki is a minimal MediaWiki API client covering the surface the
// synchronizer needs: login, page reads, translation unit collections,
// page props, edits, translation review and cache purges. All calls use
// the JSON API with formatversion=2.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a structured error returned by the MediaWiki API.
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki API error: %s: %s", e.Code, e.Info)
}

type Client struct {
	apiURL    string
	userAgent string
	client    *http.Client
	csrfToken string
}

func New(apiURL, userAgent string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		apiURL:    apiURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 60 * time.Second, Jar: jar},
	}, nil
}

type apiResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method string, params url.Values, out interface{}) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var req *http.Request
	var err error
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	var buf json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&buf); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(buf, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Error != nil {
		return &APIError{Code: envelope.Error.Code, Info: envelope.Error.Info}
	}
	if out != nil {
		if err := json.Unmarshal(buf, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) token(ctx context.Context, typ string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", typ)

	var resp struct {
		Query struct {
			Tokens map[string]string `json:"tokens"`
		} `json:"query"`
	}
	if err := c.do(ctx, http.MethodGet, params, &resp); err != nil {
		return "", err
	}
	token, ok := resp.Query.Tokens[typ+"token"]
	if !ok || token == "" {
		return "", fmt.Errorf("no %s token in response", typ)
	}
	return token, nil
}

// Login authenticates with a bot username and password and caches the
// session cookies and CSRF token for subsequent writes.
func (c *Client) Login(ctx context.Context, username, password string) error {
	loginToken, err := c.token(ctx, "login")
	if err != nil {
		return fmt.Errorf("failed to fetch login token: %w", err)
	}

	params := url.Values{}
	params.Set("action", "login")
	params.Set("lgname", username)
	params.Set("lgpassword", password)
	params.Set("lgtoken", loginToken)

	var resp struct {
		Login struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		} `json:"login"`
	}
	if err := c.do(ctx, http.MethodPost, params, &resp); err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if resp.Login.Result != "Success" {
		return fmt.Errorf("login failed: %s %s", resp.Login.Result, resp.Login.Reason)
	}

	c.csrfToken, err = c.token(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("failed to fetch csrf token: %w", err)
	}
	return nil
}

// Page is the current state of a wiki page.
type Page struct {
	Title   string
	Text    string
	Rev     int64
	Missing bool
}

// Page fetches the latest revision of a page. A missing page is not an
// error; it is reported through the Missing field.
func (c *Client) Page(ctx context.Context, title string) (Page, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("rvprop", "content|ids")
	params.Set("rvslots", "main")
	params.Set("titles", title)

	var resp struct {
		Query struct {
			Pages []struct {
				Title     string `json:"title"`
				Missing   bool   `json:"missing"`
				Revisions []struct {
					RevID int64 `json:"revid"`
					Slots struct {
						Main struct {
							Content string `json:"content"`
						} `json:"main"`
					} `json:"slots"`
				} `json:"revisions"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.do(ctx, http.MethodGet, params, &resp); err != nil {
		return Page{}, err
	}
	if len(resp.Query.Pages) == 0 {
		return Page{}, fmt.Errorf("no page data for %q", title)
	}
	p := resp.Query.Pages[0]
	page := Page{Title: p.Title, Missing: p.Missing}
	if !p.Missing && len(p.Revisions) > 0 {
		page.Text = p.Revisions[0].Slots.Main.Content
		page.Rev = p.Revisions[0].RevID
	}
	return page, nil
}

// PageProps returns the page properties of a page (empty map when the page
// has none or is missing).
func (c *Client) PageProps(ctx context.Context, title string) (map[string]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "pageprops")
	params.Set("titles", title)

	var resp struct {
		Query struct {
			Pages []struct {
				PageProps map[string]string `json:"pageprops"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.do(ctx, http.MethodGet, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].PageProps == nil {
		return map[string]string{}, nil
	}
	return resp.Query.Pages[0].PageProps, nil
}

// Unit is one translation unit of a translatable page: its key, the source
// definition and the current translation, with the fuzzy (outdated) flag.
type Unit struct {
	Key         string
	Definition  string
	Translation string
	Fuzzy       bool
}

// UnitCollection lists the translation units of a translatable page in a
// target language via the Translate extension's messagecollection API.
func (c *Client) UnitCollection(ctx context.Context, document, lang string) ([]Unit, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "messagecollection")
	params.Set("mcgroup", "page-"+document)
	params.Set("mclanguage", lang)
	params.Set("mcprop", "definition|translation|properties")

	var resp struct {
		Query struct {
			MessageCollection []struct {
				Key         string `json:"key"`
				Definition  string `json:"definition"`
				Translation string `json:"translation"`
				Properties  struct {
					Status string `json:"status"`
				} `json:"properties"`
			} `json:"messagecollection"`
		} `json:"query"`
	}
	if err := c.do(ctx, http.MethodGet, params, &resp); err != nil {
		return nil, err
	}

	units := make([]Unit, 0, len(resp.Query.MessageCollection))
	for _, m := range resp.Query.MessageCollection {
		key := m.Key
		if i := strings.LastIndex(key, "/"); i >= 0 {
			key = key[i+1:]
		}
		units = append(units, Unit{
			Key:         key,
			Definition:  m.Definition,
			Translation: m.Translation,
			Fuzzy:       m.Properties.Status == "fuzzy",
		})
	}
	return units, nil
}

// EditResult reports the outcome of an edit.
type EditResult struct {
	Rev     int64
	Changed bool
}

// Edit writes text to a page. A "nochange" response is not an error; it is
// reported as Changed=false. A stale CSRF token is refreshed and the edit
// retried once.
func (c *Client) Edit(ctx context.Context, title, text, summary string) (EditResult, error) {
	res, err := c.edit(ctx, title, text, summary)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == "badtoken" {
		if c.csrfToken, err = c.token(ctx, "csrf"); err != nil {
			return EditResult{}, fmt.Errorf("failed to refresh csrf token: %w", err)
		}
		res, err = c.edit(ctx, title, text, summary)
	}
	return res, err
}

func (c *Client) edit(ctx context.Context, title, text, summary string) (EditResult, error) {
	params := url.Values{}
	params.Set("action", "edit")
	params.Set("title", title)
	params.Set("text", text)
	params.Set("summary", summary)
	params.Set("bot", "1")
	params.Set("token", c.csrfToken)

	var resp struct {
		Edit struct {
			Result   string `json:"result"`
			NewRevID int64  `json:"newrevid"`
			NoChange bool   `json:"nochange"`
		} `json:"edit"`
	}
	if err := c.do(ctx, http.MethodPost, params, &resp); err != nil {
		return EditResult{}, err
	}
	if resp.Edit.Result != "Success" {
		return EditResult{}, fmt.Errorf("edit failed: %s", resp.Edit.Result)
	}
	return EditResult{Rev: resp.Edit.NewRevID, Changed: !resp.Edit.NoChange}, nil
}

// ApproveRevision marks a translation unit revision as reviewed.
func (c *Client) ApproveRevision(ctx context.Context, rev int64) error {
	params := url.Values{}
	params.Set("action", "translationreview")
	params.Set("revision", strconv.FormatInt(rev, 10))
	params.Set("token", c.csrfToken)
	return c.do(ctx, http.MethodPost, params, nil)
}

// Purge invalidates the rendered cache of a page.
func (c *Client) Purge(ctx context.Context, title string) error {
	params := url.Values{}
	params.Set("action", "purge")
	params.Set("titles", title)
	return c.do(ctx, http.MethodPost, params, nil)
}

// UnitTitle returns the page title of a single translation unit,
// e.g. "Translations:Handbook/3/pt".
func UnitTitle(document, key, lang string) string {
	return fmt.Sprintf("Translations:%s/%s/%s", document, key, lang)
}
