package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/playlistdl/internal/utils"
)

// Client talks to the playlist-dl admin and configuration endpoints.
type Client struct {
	baseURL string
	http    *utils.HTTPClient
}

func NewClient(baseURL string, httpClient *utils.HTTPClient) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SessionCookie is the admin session cookie currently attached to requests.
func (c *Client) SessionCookie() string {
	return c.http.Cookie(utils.SessionCookieName)
}

func (c *Client) SetSessionCookie(value string) {
	c.http.SetCookie(utils.SessionCookieName, value)
}

func (c *Client) CheckLogin(ctx context.Context) (bool, error) {
	var out loginStatusResponse
	if _, err := c.doJSON(ctx, "check-login", http.MethodGet, "/check-login", nil, &out); err != nil {
		return false, err
	}
	return out.LoggedIn, nil
}

// Login authenticates as administrator and keeps the returned session cookie.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out operationResponse
	resp, err := c.doJSON(ctx, "login", http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return err
	}
	if !out.Success {
		return &OperationError{Op: "login", Status: resp.StatusCode, Message: messageOr(out.Message, "Login failed. Try again.")}
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == utils.SessionCookieName {
			c.SetSessionCookie(cookie.Value)
			log.Debug().Str("op", "backend/client").Msg("session cookie captured")
		}
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	var out operationResponse
	resp, err := c.doJSON(ctx, "logout", http.MethodPost, "/logout", nil, &out)
	if err != nil {
		return err
	}
	if !out.Success {
		return &OperationError{Op: "logout", Status: resp.StatusCode, Message: out.Message}
	}
	c.SetSessionCookie("")
	return nil
}

// SetDownloadPath changes the server-side directory for admin downloads and
// returns the path the server now uses.
func (c *Client) SetDownloadPath(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}
	var out operationResponse
	resp, err := c.doJSON(ctx, "set-download-path", http.MethodPost, "/set-download-path", pathRequest{Path: path}, &out)
	if err != nil {
		return "", err
	}
	if !out.Success {
		return "", &OperationError{Op: "set-download-path", Status: resp.StatusCode, Message: out.Message}
	}
	return out.NewPath, nil
}

func (c *Client) ReadConfig(ctx context.Context) (SessionConfig, error) {
	var out configResponse
	resp, err := c.doJSON(ctx, "read-config", http.MethodGet, "/read-config", nil, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &OperationError{Op: "read-config", Status: resp.StatusCode, Message: out.Message}
	}
	if out.Data == nil {
		out.Data = SessionConfig{}
	}
	return out.Data, nil
}

// EnableCookie uploads a cookies file as the multipart field "cookie". The server
// response body is not inspected beyond the status code.
func (c *Client) EnableCookie(ctx context.Context, cookieFile string) error {
	if cookieFile == "" {
		return ErrEmptyCookie
	}
	f, err := os.Open(cookieFile)
	if err != nil {
		return fmt.Errorf("error opening cookie file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("cookie", filepath.Base(cookieFile))
	if err != nil {
		return fmt.Errorf("error creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("error reading cookie file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("error finalizing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/enable-cookie", &body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("enable-cookie request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: "enable-cookie", Status: resp.StatusCode}
	}
	log.Info().Str("op", "backend/client").Msgf("uploaded cookie file %s", cookieFile)
	return nil
}

// DisableCookie is fire-and-forget on the server side; only transport errors are
// reported.
func (c *Client) DisableCookie(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/disable-cookie", nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("disable-cookie request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

// doJSON sends an optional JSON body and decodes a JSON reply. Error statuses are
// still decoded because the backend reports failures as success=false bodies.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("error encoding %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	log.Debug().Str("op", "backend/client").Msgf("%s %s", method, req.URL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("error reading %s response: %w", op, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp, &StatusError{Op: op, Status: resp.StatusCode}
		}
		return resp, fmt.Errorf("error decoding %s response: %w", op, err)
	}
	return resp, nil
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
