package firestore

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
)

const DefaultBaseURL = "https://firestore.googleapis.com"

// TokenProvider supplies OAuth2 bearer tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client is a minimal Firestore REST documents client.
type Client struct {
	documentsURL string
	tokens       TokenProvider
	httpClient   *http.Client
}

func NewClient(baseURL, projectID string, tokens TokenProvider, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		documentsURL: strings.TrimRight(baseURL, "/") + "/v1/projects/" + projectID + "/databases/(default)/documents",
		tokens:       tokens,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// ListDocuments returns every document of a collection, following page tokens.
// A missing collection yields no documents.
func (c *Client) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	pageToken := ""
	for {
		query := url.Values{"pageSize": {"300"}}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page listResponse
		status, err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(collection)+"?"+query.Encode(), nil, &page)
		if status == http.StatusNotFound {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}

		docs = append(docs, page.Documents...)
		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// PatchDocument writes fields into collection/id, creating the document if it
// does not exist. Only the paths in mask are touched; a masked path missing
// from fields is removed from the document.
func (c *Client) PatchDocument(ctx context.Context, collection, id string, fields map[string]Value, mask []string) (Document, error) {
	query := url.Values{}
	for _, path := range mask {
		query.Add("updateMask.fieldPaths", path)
	}

	path := "/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out Document
	if _, err := c.do(ctx, http.MethodPatch, path, Document{Fields: fields}, &out); err != nil {
		return Document{}, fmt.Errorf("patch %s/%s: %w", collection, id, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	accessToken, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, fmt.Errorf("access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.documentsURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var envelope struct {
			Error APIError `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			envelope.Error.StatusCode = resp.StatusCode
			return resp.StatusCode, &envelope.Error
		}
		return resp.StatusCode, fmt.Errorf("firestore status %d: %s", resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
