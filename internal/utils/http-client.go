package utils

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient wraps http.Client with the configured user agent, custom headers and
// the backend session cookie.
type HTTPClient struct {
	client  *http.Client
	config  HTTPClientConfig
	mu      sync.RWMutex
	cookies map[string]string
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	transport := &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		DisableCompression:  true,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config:  cfg,
		cookies: make(map[string]string),
	}
}

// Streaming returns a client sharing the transport, headers and cookies of c but
// without an overall request timeout, for long-lived event streams.
func (c *HTTPClient) Streaming() *HTTPClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cookies := make(map[string]string, len(c.cookies))
	for k, v := range c.cookies {
		cookies[k] = v
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: c.client.Transport,
		},
		config:  c.config,
		cookies: cookies,
	}
}

func (c *HTTPClient) SetCookie(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		delete(c.cookies, name)
		return
	}
	c.cookies[name] = value
}

func (c *HTTPClient) Cookie(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookies[name]
}

func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.RLock()
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	c.mu.RUnlock()
	return c.client.Do(req)
}
