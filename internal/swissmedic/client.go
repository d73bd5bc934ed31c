/*
Package swissmedic downloads the AIPS export from the swissmedicinfo
download form, which only releases the ZIP after the disclaimer is accepted
within the same cookie session.
*/
package swissmedic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultEndpoint  = "https://download.swissmedicinfo.ch/"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:65.0) Gecko/20100101 Firefox/65.0"
	DefaultTimeout   = 5 * time.Minute

	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguageHeader = "de,en-US;q=0.7,en;q=0.3"
)

var (
	// ErrNetwork covers transport failures and error statuses.
	ErrNetwork = errors.New("download request failed")
	// ErrProtocol means the consent page no longer has the expected form.
	ErrProtocol = errors.New("unexpected consent page")
)

type ClientOptions struct {
	Endpoint  string
	UserAgent string
	// Timeout applies to each of the two requests.
	Timeout time.Duration
	// BrowserTLS installs a browser-like TLS fingerprint on the transport.
	BrowserTLS bool
}

type Client struct {
	endpoint string
	http     *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	if opts.BrowserTLS {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetTimeout(opts.Timeout)
	client.SetHeaders(map[string]string{
		"User-Agent":      opts.UserAgent,
		"Accept":          acceptHeader,
		"Accept-Language": acceptLanguageHeader,
	})

	return &Client{
		endpoint: opts.Endpoint,
		http:     client,
	}, nil
}

// FetchDocument loads the consent page, accepts the disclaimer and returns
// the response body of the acceptance POST, which is expected to be a ZIP.
// The body is not inspected here.
func (c *Client) FetchDocument(ctx context.Context) ([]byte, error) {
	slog.InfoContext(ctx, "fetching download page", "url", c.endpoint)
	page, err := c.http.R().
		SetContext(ctx).
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrNetwork, c.endpoint, err)
	}
	if page.IsError() {
		return nil, fmt.Errorf("%w: GET %s returned %s", ErrNetwork, c.endpoint, page.Status())
	}

	fields, err := parseHiddenFields(bytes.NewReader(page.Body()))
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "submitting download request")
	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"Referer":                   c.endpoint,
			"Content-Type":              "application/x-www-form-urlencoded",
			"Upgrade-Insecure-Requests": "1",
		}).
		SetFormDataFromValues(consentForm(fields)).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %w", ErrNetwork, c.endpoint, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: POST %s returned %s", ErrNetwork, c.endpoint, res.Status())
	}

	body := res.Body()
	slog.InfoContext(ctx, "downloaded", "bytes", len(body), "content_type", res.Header().Get("Content-Type"))
	return body, nil
}
