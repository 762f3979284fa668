package balldontlie

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/roster-manager/internal/domain/player"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
	"github.com/riskibarqy/roster-manager/internal/platform/resilience"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL  = "https://api.balldontlie.io/v1"
	defaultPerPage  = 10
	maxPerPage      = 100
	maxResponseSize = 4 << 20
)

var (
	errTransient   = crerr.New("player source transient failure")
	errNotFound    = crerr.New("player source resource not found")
	ErrUnavailable = crerr.New("player source unavailable")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the basketball player catalogue over HTTP.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewCircuitBreaker(breakerCfg)
	named := logger.Named("balldontlie")
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		named.Warn("player source circuit breaker state changed", "from", string(from), "to", string(to))
	})

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   retryBackoff,
		logger:         named,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchPage returns the players after cursor; cursor 0 starts from the beginning.
func (c *Client) FetchPage(ctx context.Context, cursor int64, perPage int) (player.Page, error) {
	if cursor < 0 {
		return player.Page{}, fmt.Errorf("cursor must not be negative")
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	perPage = min(perPage, maxPerPage)

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	if cursor > 0 {
		query.Set("cursor", strconv.FormatInt(cursor, 10))
	}

	var envelope pageEnvelope
	if err := c.doJSON(ctx, "/players", query, &envelope); err != nil {
		return player.Page{}, fmt.Errorf("fetch players cursor=%d: %w", cursor, err)
	}

	page := player.Page{Data: make([]player.Player, 0, len(envelope.Data))}
	for _, item := range envelope.Data {
		mapped := item.toDomain()
		if err := mapped.Validate(); err != nil {
			c.logger.WarnContext(ctx, "skip invalid player row", "error", err)
			continue
		}
		page.Data = append(page.Data, mapped)
	}
	if next := envelope.Meta.NextCursor; next != nil && *next > 0 {
		value := *next
		page.NextCursor = &value
	}

	return page, nil
}

// GetPlayer reports found=false when the catalogue no longer knows playerID.
func (c *Client) GetPlayer(ctx context.Context, playerID int64) (player.Player, bool, error) {
	if playerID <= 0 {
		return player.Player{}, false, fmt.Errorf("player id must be greater than zero")
	}

	var envelope playerEnvelope
	err := c.doJSON(ctx, "/players/"+strconv.FormatInt(playerID, 10), nil, &envelope)
	if crerr.Is(err, errNotFound) {
		return player.Player{}, false, nil
	}
	if err != nil {
		return player.Player{}, false, fmt.Errorf("get player id=%d: %w", playerID, err)
	}
	if envelope.Data.ID <= 0 {
		return player.Player{}, false, nil
	}

	return envelope.Data.toDomain(), true, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		call := func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}
		if !c.circuitEnabled {
			return raw, call()
		}
		err := c.breaker.Execute(call, isCircuitFailure)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "player source circuit breaker rejected request", "state", string(c.breaker.State()))
			return nil, crerr.Mark(crerr.Wrap(err, "player source is temporarily unavailable"), ErrUnavailable)
		}
		return raw, err
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode player source payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Mark(crerr.Wrapf(err, "send request"), errTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrapf(readErr, "read response body"), errTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, crerr.Mark(crerr.Newf("player source status=%d", resp.StatusCode), errNotFound)
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(crerr.Newf("player source status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errTransient)
			default:
				return nil, crerr.Newf("player source status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("player source request failed")
	}
	c.logger.WarnContext(ctx, "player source request failed",
		"url", fullURL,
		"attempts", c.maxRetries+1,
		"error", lastErr,
	)
	return nil, lastErr
}

// IsUnavailable reports whether err came from an open circuit or exhausted retries.
func IsUnavailable(err error) bool {
	return crerr.Is(err, ErrUnavailable) || crerr.Is(err, errTransient)
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
