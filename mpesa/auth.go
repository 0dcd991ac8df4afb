package mpesa

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Endpoints holds the Daraja API URLs for one environment.
type Endpoints struct {
	Auth     string
	STKPush  string
	B2C      string
	STKQuery string
}

// EndpointsFor returns the Daraja URLs for "sandbox" or "production".
func EndpointsFor(env string) Endpoints {
	base := "https://sandbox.safaricom.co.ke"
	if env == "production" {
		base = "https://api.safaricom.co.ke"
	}
	return Endpoints{
		Auth:     base + "/oauth/v1/generate?grant_type=client_credentials",
		STKPush:  base + "/mpesa/stkpush/v1/processrequest",
		B2C:      base + "/mpesa/b2c/v1/paymentrequest",
		STKQuery: base + "/mpesa/stkpushquery/v1/query",
	}
}

// Safaricom states a one hour token lifetime; cache for 55 minutes so a
// token never expires under an in-flight request.
const tokenCacheLifetime = 55 * time.Minute

// Auth obtains and caches the OAuth bearer token for all Daraja calls.
// Construct one per process and hand it to the gateways.
type Auth struct {
	client         *resty.Client
	endpoints      Endpoints
	consumerKey    string
	consumerSecret string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewAuth(env, consumerKey, consumerSecret string) *Auth {
	return &Auth{
		client:         resty.New().SetTimeout(30 * time.Second),
		endpoints:      EndpointsFor(env),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
	}
}

// AccessToken returns the cached token while it is fresh, otherwise performs
// the client-credentials exchange. Failures propagate; there is no retry at
// this layer since the next invocation re-fetches anyway.
func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expiry) {
		return a.token, nil
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetBasicAuth(a.consumerKey, a.consumerSecret).
		SetResult(&out).
		Get(a.endpoints.Auth)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if resp.IsError() || out.AccessToken == "" {
		return "", fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode())
	}

	a.token = out.AccessToken
	a.expiry = time.Now().Add(tokenCacheLifetime)
	return a.token, nil
}

// Clear drops the cached token, forcing a re-fetch on the next call.
func (a *Auth) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
	a.expiry = time.Time{}
}
