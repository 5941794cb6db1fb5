package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultBaseURL is the GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// ErrNotFound is returned when the requested path does not exist in the
// repository.
var ErrNotFound = errors.New("file not found")

// Client is the HTTP wrapper for the GitHub Contents API.
type Client struct {
	baseURL    string
	token      string
	repo       string // "owner/name"
	branch     string
	httpClient *http.Client
}

// NewClient creates a new GitHub Contents API client.
func NewClient(token, repo, branch string) *Client {
	if branch == "" {
		branch = "main"
	}
	return &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		repo:       repo,
		branch:     branch,
		httpClient: &http.Client{},
	}
}

// SetBaseURL overrides the API endpoint for testing purposes.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// File is a repository file fetched through the Contents API.
type File struct {
	Path    string
	Content string // decoded
	SHA     string
}

// GetFile fetches a file via GET /repos/{repo}/contents/{path}.
// Returns ErrNotFound when the path does not exist on the branch.
func (c *Client) GetFile(ctx context.Context, path string) (*File, error) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", c.baseURL, c.repo, path, c.branch)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build get contents request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call github contents API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API get error %d: %s", resp.StatusCode, string(raw))
	}

	var body struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		SHA      string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode github contents response: %w", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(stripNewlines(body.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	return &File{Path: path, Content: string(decoded), SHA: body.SHA}, nil
}

// CreateFile creates a file via PUT /repos/{repo}/contents/{path}.
func (c *Client) CreateFile(ctx context.Context, path, message, content string) error {
	return c.putFile(ctx, path, message, content, "")
}

// UpdateFile replaces a file's content. The sha of the current blob is
// required by the Contents API to detect conflicting updates.
func (c *Client) UpdateFile(ctx context.Context, path, message, content, sha string) error {
	return c.putFile(ctx, path, message, content, sha)
}

func (c *Client) putFile(ctx context.Context, path, message, content, sha string) error {
	url := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, c.repo, path)

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  c.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal contents request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build put contents request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call github contents API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github API put error %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", "application/vnd.github+json")
}

// stripNewlines removes the line breaks GitHub inserts into base64
// content.
func stripNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
