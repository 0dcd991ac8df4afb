package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token", "expires_in": "3599"})
	}))
}

func TestAccessTokenCaching(t *testing.T) {
	hits := 0
	srv := newAuthServer(t, &hits)
	defer srv.Close()

	auth := NewAuth("sandbox", "key", "secret")
	auth.endpoints.Auth = srv.URL

	token, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)

	// second call within the cache window must not hit the provider
	_, err = auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	auth.Clear()
	_, err = auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestAccessTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	auth := NewAuth("sandbox", "bad", "creds")
	auth.endpoints.Auth = srv.URL

	_, err := auth.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestInitiatePushRequestShape(t *testing.T) {
	hits := 0
	authSrv := newAuthServer(t, &hits)
	defer authSrv.Close()

	var captured map[string]interface{}
	pushSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"CheckoutRequestID":   "ws_CO_191220191020363925",
			"MerchantRequestID":   "29115-34620561-1",
			"ResponseCode":        "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage":     "Success. Request accepted for processing",
		})
	}))
	defer pushSrv.Close()

	auth := NewAuth("sandbox", "key", "secret")
	auth.endpoints.Auth = authSrv.URL
	stk := NewSTKPush(auth, "sandbox", "174379", "passkey", "https://wallet.example.com")
	stk.endpoints.STKPush = pushSrv.URL

	result, err := stk.InitiatePush(context.Background(), "254722000111", 100.9, "CODECASH")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", result.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", result.MerchantRequestID)

	// amount is floored to a whole unit
	assert.Equal(t, float64(100), captured["Amount"])
	assert.Equal(t, "254722000111", captured["PartyA"])
	assert.Equal(t, "254722000111", captured["PhoneNumber"])
	assert.Equal(t, "174379", captured["BusinessShortCode"])
	assert.Equal(t, "https://wallet.example.com/api/mpesa/callback/deposit", captured["CallBackURL"])

	// password = base64(shortcode + passkey + timestamp)
	timestamp, _ := captured["Timestamp"].(string)
	require.Len(t, timestamp, 14)
	wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + timestamp))
	assert.Equal(t, wantPassword, captured["Password"])
}

func TestInitiatePushProviderError(t *testing.T) {
	hits := 0
	authSrv := newAuthServer(t, &hits)
	defer authSrv.Close()

	pushSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"requestId":    "1234-5678",
			"errorCode":    "400.002.02",
			"errorMessage": "Bad Request - Invalid PhoneNumber",
		})
	}))
	defer pushSrv.Close()

	auth := NewAuth("sandbox", "key", "secret")
	auth.endpoints.Auth = authSrv.URL
	stk := NewSTKPush(auth, "sandbox", "174379", "passkey", "https://wallet.example.com")
	stk.endpoints.STKPush = pushSrv.URL

	_, err := stk.InitiatePush(context.Background(), "banana", 100, "CODECASH")
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	// the provider's own message is surfaced when present
	assert.Equal(t, "Bad Request - Invalid PhoneNumber", reqErr.Message)
}

func TestQueryStatusRequestShape(t *testing.T) {
	hits := 0
	authSrv := newAuthServer(t, &hits)
	defer authSrv.Close()

	var captured map[string]interface{}
	querySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"ResponseCode":      "0",
			"ResultCode":        "0",
			"ResultDesc":        "The service request is processed successfully.",
			"CheckoutRequestID": "ws_CO_191220191020363925",
		})
	}))
	defer querySrv.Close()

	auth := NewAuth("sandbox", "key", "secret")
	auth.endpoints.Auth = authSrv.URL
	stk := NewSTKPush(auth, "sandbox", "174379", "passkey", "https://wallet.example.com")
	stk.endpoints.STKQuery = querySrv.URL

	result, err := stk.QueryStatus(context.Background(), "ws_CO_191220191020363925")
	require.NoError(t, err)
	assert.Equal(t, "0", result.ResultCode)
	assert.Equal(t, "ws_CO_191220191020363925", captured["CheckoutRequestID"])
}

func TestInitiateTransferRequestShape(t *testing.T) {
	hits := 0
	authSrv := newAuthServer(t, &hits)
	defer authSrv.Close()

	var captured map[string]interface{}
	b2cSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"ConversationID":           "AG_20191219_00005797af5d7d75f652",
			"OriginatorConversationID": "10571-7910404-1",
			"ResponseCode":             "0",
			"ResponseDescription":      "Accept the service request successfully.",
		})
	}))
	defer b2cSrv.Close()

	auth := NewAuth("sandbox", "key", "secret")
	auth.endpoints.Auth = authSrv.URL
	b2c := NewB2C(auth, "sandbox", "600000", "testapi", "credential", "https://wallet.example.com")
	b2c.endpoints.B2C = b2cSrv.URL

	result, err := b2c.InitiateTransfer(context.Background(), "254722000111", 250.75, "Withdrawal from CODECASH")
	require.NoError(t, err)
	assert.Equal(t, "AG_20191219_00005797af5d7d75f652", result.ConversationID)
	assert.Equal(t, "10571-7910404-1", result.OriginatorConversationID)

	assert.Equal(t, float64(250), captured["Amount"])
	assert.Equal(t, "600000", captured["PartyA"])
	assert.Equal(t, "254722000111", captured["PartyB"])
	assert.Equal(t, "testapi", captured["InitiatorName"])
	assert.Equal(t, "BusinessPayment", captured["CommandID"])
	assert.Equal(t, "https://wallet.example.com/api/mpesa/callback/withdraw", captured["ResultURL"])
	assert.Equal(t, "https://wallet.example.com/api/mpesa/timeout", captured["QueueTimeOutURL"])
}
