package scraper

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"placement-watch/internal/config"

	"github.com/gocolly/colly/v2"
)

// SessionClient runs one authenticated session against the portal per call:
// GET login page, POST credentials, GET the postings listing, GET logout.
// Logout is attempted even when the fetch failed; the portal otherwise
// keeps the session pinned.
type SessionClient struct {
	baseURL     string
	username    string
	password    string
	settle      time.Duration
	allowedHost string
	logger      *log.Logger
}

func NewSessionClient(cfg config.PortalConfig, logger *log.Logger) *SessionClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &SessionClient{
		baseURL:     base,
		username:    cfg.Username,
		password:    cfg.Password,
		settle:      cfg.SettleInterval,
		allowedHost: hostFromBaseURL(base),
		logger:      logger,
	}
}

func (c *SessionClient) loginPageURL() string { return c.baseURL + "/login.html" }
func (c *SessionClient) loginPostURL() string { return c.baseURL + "/auth/login.html" }
func (c *SessionClient) listingURL() string   { return c.baseURL + "/applyjobs.html" }
func (c *SessionClient) logoutURL() string    { return c.baseURL + "/logout.html" }

// FetchPostingsPage performs the full session and returns the raw markup of
// the postings listing.
func (c *SessionClient) FetchPostingsPage(ctx context.Context) ([]byte, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("%w: no portal base URL", ErrScrapeFailed)
	}

	col := colly.NewCollector(
		colly.AllowedDomains(c.allowedHost),
		colly.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"),
	)

	var page []byte
	listing := c.listingURL()
	col.OnResponse(func(r *colly.Response) {
		if r.Request.URL.String() == listing {
			body := make([]byte, len(r.Body))
			copy(body, r.Body)
			page = body
		}
	})

	var reqErr error
	col.OnError(func(r *colly.Response, err error) {
		if reqErr == nil {
			reqErr = err
		}
	})

	fetchErr := c.loginAndFetch(ctx, col, &reqErr)

	// Best-effort logout regardless of how the fetch went.
	if err := c.logout(ctx, col); err != nil && c.logger != nil {
		c.logger.Printf("[Portal] logout failed | error=%v", err)
	}

	if fetchErr != nil {
		return nil, fetchErr
	}
	if page == nil {
		return nil, fmt.Errorf("%w: listing page not captured", ErrScrapeFailed)
	}
	return page, nil
}

func (c *SessionClient) loginAndFetch(ctx context.Context, col *colly.Collector, reqErr *error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}

	if c.logger != nil {
		c.logger.Printf("[Portal] GET %s", c.loginPageURL())
	}
	if err := col.Visit(c.loginPageURL()); err != nil {
		return fmt.Errorf("%w: login page: %v", ErrScrapeFailed, err)
	}
	col.Wait()
	if *reqErr != nil {
		return fmt.Errorf("%w: login page: %v", ErrScrapeFailed, *reqErr)
	}

	if c.logger != nil {
		c.logger.Printf("[Portal] POST %s", c.loginPostURL())
	}
	err := col.Post(c.loginPostURL(), map[string]string{
		"identity":    c.username,
		"password":    c.password,
		"submit":      "Login",
		"txtcentrenm": "",
	})
	if err != nil {
		return fmt.Errorf("%w: login: %v", ErrScrapeFailed, err)
	}
	col.Wait()
	if *reqErr != nil {
		return fmt.Errorf("%w: login: %v", ErrScrapeFailed, *reqErr)
	}

	if err := c.wait(ctx); err != nil {
		return err
	}

	if c.logger != nil {
		c.logger.Printf("[Portal] GET %s", c.listingURL())
	}
	if err := col.Visit(c.listingURL()); err != nil {
		return fmt.Errorf("%w: listing: %v", ErrScrapeFailed, err)
	}
	col.Wait()
	if *reqErr != nil {
		return fmt.Errorf("%w: listing: %v", ErrScrapeFailed, *reqErr)
	}

	return c.wait(ctx)
}

func (c *SessionClient) logout(ctx context.Context, col *colly.Collector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.logger != nil {
		c.logger.Printf("[Portal] GET %s", c.logoutURL())
	}
	if err := col.Visit(c.logoutURL()); err != nil {
		return err
	}
	col.Wait()
	return nil
}

func (c *SessionClient) wait(ctx context.Context) error {
	if c.settle <= 0 {
		return nil
	}
	t := time.NewTimer(c.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrScrapeFailed, ctx.Err())
	case <-t.C:
		return nil
	}
}

func hostFromBaseURL(base string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return ""
	}
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
