package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/nlsh/internal/domain"
	"github.com/bnema/nlsh/internal/ports"
)

const deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"
const maxOAuthResponseBytes = 1 << 20
const defaultPollInterval = 5 * time.Second
const slowDownStep = 5 * time.Second

var errAuthorizationPending = errors.New("authorization pending")

type API struct {
	BaseURL        string
	DeviceCodePath string
	TokenPath      string
}

var _ ports.DeviceAuthorizer = DeviceFlowAdapter{}

// DeviceFlowAdapter runs the OAuth device-authorization flow against the
// identity provider and yields the long-lived identity token.
type DeviceFlowAdapter struct {
	API            API
	ClientID       string
	Scopes         []string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Clock          ports.Clock
	Logger         *slog.Logger
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Interval         int64  `json:"interval"`
}

// RequestDeviceCode issues a single request; any non-2xx answer is final.
func (a DeviceFlowAdapter) RequestDeviceCode(ctx context.Context) (domain.DeviceCode, error) {
	if a.ClientID == "" {
		return domain.DeviceCode{}, errors.New("client id is required")
	}

	endpoint, err := buildAPIURL(a.API.BaseURL, a.API.DeviceCodePath)
	if err != nil {
		return domain.DeviceCode{}, err
	}

	values := url.Values{}
	values.Set("client_id", a.ClientID)
	if len(a.Scopes) > 0 {
		values.Set("scope", strings.Join(a.Scopes, " "))
	}

	requestCtx, cancel := a.requestContext(ctx)
	defer cancel()

	resp, err := a.postForm(requestCtx, endpoint, values)
	if err != nil {
		return domain.DeviceCode{}, fmt.Errorf("request device code: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.DeviceCode{}, fmt.Errorf("request device code: %s", describeFailure(resp))
	}

	var payload deviceCodeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOAuthResponseBytes)).Decode(&payload); err != nil {
		return domain.DeviceCode{}, fmt.Errorf("decode device code response: %w", err)
	}
	if payload.DeviceCode == "" || payload.UserCode == "" || payload.VerificationURI == "" {
		return domain.DeviceCode{}, errors.New("device code response missing required fields")
	}

	interval := time.Duration(payload.Interval) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return domain.DeviceCode{
		DeviceCode:      payload.DeviceCode,
		UserCode:        payload.UserCode,
		VerificationURI: payload.VerificationURI,
		Interval:        interval,
		ExpiresIn:       time.Duration(payload.ExpiresIn) * time.Second,
	}, nil
}

// PollForToken waits interval before every exchange attempt and keeps going
// until an access token arrives. Every failure, pending or not, is retried.
// The loop has no deadline of its own; callers bound it through ctx.
func (a DeviceFlowAdapter) PollForToken(ctx context.Context, deviceCode string, interval time.Duration) (string, error) {
	if a.ClientID == "" {
		return "", errors.New("client id is required")
	}
	if deviceCode == "" {
		return "", errors.New("device code is required")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for attempt := 1; ; attempt++ {
		if err := a.clock().Sleep(ctx, interval); err != nil {
			return "", err
		}

		token, nextInterval, err := a.exchangeOnce(ctx, deviceCode, interval)
		if err == nil {
			return token, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		if errors.Is(err, errAuthorizationPending) {
			a.logger().Debug("device authorization pending", "attempt", attempt, "next_interval", nextInterval)
		} else {
			a.logger().Debug("device token poll failed, retrying", "attempt", attempt, "error", err)
		}
		interval = nextInterval
	}
}

func (a DeviceFlowAdapter) exchangeOnce(ctx context.Context, deviceCode string, interval time.Duration) (string, time.Duration, error) {
	endpoint, err := buildAPIURL(a.API.BaseURL, a.API.TokenPath)
	if err != nil {
		return "", interval, err
	}

	values := url.Values{}
	values.Set("client_id", a.ClientID)
	values.Set("device_code", deviceCode)
	values.Set("grant_type", deviceCodeGrantType)

	requestCtx, cancel := a.requestContext(ctx)
	defer cancel()

	resp, err := a.postForm(requestCtx, endpoint, values)
	if err != nil {
		return "", interval, fmt.Errorf("request token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOAuthResponseBytes)).Decode(&payload); err != nil {
		return "", interval, fmt.Errorf("request token: %s: decode response: %w", resp.Status, err)
	}
	if payload.AccessToken != "" {
		return payload.AccessToken, interval, nil
	}

	nextInterval := interval
	if payload.Interval > 0 {
		nextInterval = time.Duration(payload.Interval) * time.Second
	}

	switch payload.Error {
	case "authorization_pending":
		return "", nextInterval, errAuthorizationPending
	case "slow_down":
		if payload.Interval <= 0 {
			nextInterval += slowDownStep
		}
		return "", nextInterval, errAuthorizationPending
	case "":
		return "", nextInterval, fmt.Errorf("request token: %s: response missing access token", resp.Status)
	default:
		return "", nextInterval, fmt.Errorf("request token: %s", formatOAuthError(resp.Status, payload.Error, payload.ErrorDescription))
	}
}

func (a DeviceFlowAdapter) postForm(ctx context.Context, endpoint string, values url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return a.httpClient().Do(req)
}

func (a DeviceFlowAdapter) httpClient() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

func (a DeviceFlowAdapter) clock() ports.Clock {
	if a.Clock != nil {
		return a.Clock
	}
	return ports.SystemClock{}
}

func (a DeviceFlowAdapter) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a DeviceFlowAdapter) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	requestTimeout := a.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func describeFailure(resp *http.Response) string {
	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOAuthResponseBytes)).Decode(&payload); err != nil {
		return resp.Status
	}
	return formatOAuthError(resp.Status, payload.Error, payload.ErrorDescription)
}

func formatOAuthError(status string, code string, description string) string {
	if code == "" {
		return status
	}
	if description != "" {
		return status + ": " + code + ": " + description
	}
	return status + ": " + code
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
