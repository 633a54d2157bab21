package authserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/pkg/circuitbreaker"
	"github.com/airbitz/abcd/pkg/httputil"
	"github.com/sony/gobreaker"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

const (
	getInfoPath    = "/v1/getinfo"
	repoLookupPath = "/v1/wallet/lookup"
	repoCreatePath = "/v1/wallet/create"

	DefaultRequestTimeout = 30 * time.Second
	DefaultRateLimit      = 10
)

// Server status codes carried by every response envelope.
const (
	statusSuccess     = 0
	statusError       = 1
	statusNoAccount   = 2
	statusNotFound    = 3
	statusInvalidAuth = 4
)

var (
	ErrMissingURL      = errors.New("missing auth server url")
	ErrMalformedResult = errors.New("malformed server response")
)

type Config struct {
	URL            string
	APIKey         string
	RequestTimeout time.Duration
	// RateLimit is the max number of requests per second.
	RateLimit int
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Results    json.RawMessage `json:"results"`
}

type repoRequest struct {
	UserID  string `json:"l1"`
	AuthKey string `json:"lp1"`
	SyncKey string `json:"repo_wallet_key"`
}

// Client talks to the login server. It supplies the general info document
// and the discovery of the repositories of a login.
type Client struct {
	baseURL string
	apiKey  string
	http    *httputil.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    httputil.NewClient(cfg.RequestTimeout),
		cb:      circuitbreaker.NewCircuitBreaker("auth server"),
		limiter: ratelimit.New(cfg.RateLimit),
	}, nil
}

// FetchGeneral returns the raw general info document.
func (c *Client) FetchGeneral(ctx context.Context) ([]byte, error) {
	results, err := c.call(ctx, getInfoPath, struct{}{})
	if err != nil {
		return nil, err
	}
	if len(results) <= 0 || string(results) == "null" {
		return nil, ErrMalformedResult
	}
	return results, nil
}

// RepoLookup checks that the server knows the repository, creating it first
// if requested.
func (c *Client) RepoLookup(
	ctx context.Context, auth domain.ServerAuth, syncKey string, create bool,
) error {
	path := repoLookupPath
	if create {
		path = repoCreatePath
	}

	_, err := c.call(ctx, path, repoRequest{
		UserID:  auth.UserID,
		AuthKey: base64.StdEncoding.EncodeToString(auth.AuthKey),
		SyncKey: syncKey,
	})
	return err
}

func (c *Client) call(
	ctx context.Context, path string, request interface{},
) (json.RawMessage, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if c.apiKey != "" {
		headers["Authorization"] = fmt.Sprintf("Token %s", c.apiKey)
	}
	url := c.baseURL + path

	res, err := c.cb.Execute(func() (interface{}, error) {
		c.limiter.Take()

		status, resp, err := c.http.NewHTTPRequest(
			ctx, http.MethodPost, url, string(body), headers,
		)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server error %d: %s", status, resp)
		}

		env := &envelope{}
		if err := json.Unmarshal([]byte(resp), env); err != nil {
			return nil, fmt.Errorf(
				"%w: status %d: %s", ErrMalformedResult, status, err,
			)
		}
		return env, nil
	})
	if err != nil {
		log.WithError(err).Debugf("request to %s failed", path)
		return nil, err
	}

	env := res.(*envelope)
	switch env.StatusCode {
	case statusSuccess:
		return env.Results, nil
	case statusNotFound:
		return nil, domain.ErrRepositoryNotFound
	case statusNoAccount, statusInvalidAuth:
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthentication, env.Message)
	default:
		return nil, fmt.Errorf("server error %d: %s", env.StatusCode, env.Message)
	}
}
