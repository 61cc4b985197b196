package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-transcript/captions"
	"github.com/nijaru/yt-transcript/errors"
)

const (
	DefaultDelay          = 500 * time.Millisecond
	DefaultAcceptLanguage = "en-US"
	defaultBaseURL        = "https://www.youtube.com"

	watchPath     = "/watch?v=%s"
	innertubePath = "/youtubei/v1/player?key=%s"

	maxPageBytes    = 8 << 20
	maxPlayerBytes  = 4 << 20
	maxCaptionBytes = 4 << 20
)

// DefaultLanguages is the preference list used when a caller passes none.
var DefaultLanguages = []string{"en"}

// Client discovers and downloads YouTube transcripts. Each Client owns its
// HTTP client and cookie jar; each call issues its requests strictly in sequence
// and waits the configured delay before every outbound request.
type Client struct {
	httpClient     *http.Client
	delay          time.Duration
	acceptLanguage string
	consent        ConsentHandler
	decoder        *captions.Decoder
	logger         logrus.FieldLogger

	watchURL     string
	innertubeURL string
}

type Option func(*Client)

// WithDelay sets the pause taken before each outbound request.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		if d < 0 {
			d = 0
		}
		c.delay = d
	}
}

// WithHTTPClient uses hc as the transport. A cookie jar is attached when hc
// has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithAcceptLanguage(lang string) Option {
	return func(c *Client) {
		c.acceptLanguage = lang
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConsentHandler replaces the consent-wall strategy. A nil handler
// disables consent handling entirely.
func WithConsentHandler(h ConsentHandler) Option {
	return func(c *Client) {
		c.consent = h
	}
}

func WithPreserveFormatting(preserve bool) Option {
	return func(c *Client) {
		c.decoder = captions.NewDecoder(preserve)
	}
}

// WithBaseURL points the watch page and innertube endpoints at another host.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.watchURL = base + watchPath
		c.innertubeURL = base + innertubePath
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		delay:          DefaultDelay,
		acceptLanguage: DefaultAcceptLanguage,
		consent:        CookieConsent{},
		decoder:        captions.NewDecoder(false),
		logger:         logrus.StandardLogger(),
		watchURL:       defaultBaseURL + watchPath,
		innertubeURL:   defaultBaseURL + innertubePath,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	if hc.Jar == nil {
		// cookiejar.New only fails on a bad PublicSuffixList
		jar, _ := cookiejar.New(nil)
		hc.Jar = jar
	}
	hc.Transport = &headerTransport{
		base:           hc.Transport,
		acceptLanguage: c.acceptLanguage,
	}
	c.httpClient = &hc

	return c
}

// Delay reports the configured pause between requests.
func (c *Client) Delay() time.Duration {
	return c.delay
}

// wait blocks for the configured delay or until ctx is done.
func (c *Client) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) do(req *http.Request, op, videoID string, limit int64) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Transport(op, videoID, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(op, videoID, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.Transport(op, videoID, err)
	}
	if int64(len(body)) > limit {
		return nil, errors.TooLarge(op, videoID, limit)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, op, videoID, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Transport(op, videoID, err)
	}
	return c.do(req, op, videoID, limit)
}

func checkResponse(op, videoID string, resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.New(errors.IPBlocked, op, videoID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := http.StatusText(resp.StatusCode)
		if text == "" {
			text = "Unknown error"
		}
		return errors.HTTPStatusError(op, videoID, resp.StatusCode, text)
	}
	return nil
}

type headerTransport struct {
	base           http.RoundTripper
	acceptLanguage string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.acceptLanguage == "" || req.Header.Get("Accept-Language") != "" {
		return base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Accept-Language", t.acceptLanguage)
	return base.RoundTrip(r)
}
