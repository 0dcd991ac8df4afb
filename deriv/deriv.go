// Package deriv is a thin client for the Deriv websocket API. The wallet
// only needs authorize and balance; trading calls stay out.
package deriv

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

const defaultEndpoint = "wss://ws.derivws.com/websockets/v3"

// APIError is the error object Deriv embeds in responses.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deriv: %s (%s)", e.Message, e.Code)
}

// BalanceInfo is the account balance snapshot returned by the API.
type BalanceInfo struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	LoginID  string  `json:"loginid"`
}

type Client struct {
	Endpoint string
	Dialer   *websocket.Dialer
}

func New(appID string) *Client {
	return &Client{
		Endpoint: fmt.Sprintf("%s?app_id=%s", defaultEndpoint, appID),
		Dialer:   websocket.DefaultDialer,
	}
}

// sanitizeToken strips whitespace and stray quotes users paste around API
// tokens.
func sanitizeToken(token string) string {
	return strings.Trim(strings.TrimSpace(token), `'"`)
}

// FetchBalance dials the socket, authorizes with the given API token and
// reads the account balance. The connection is per-call; nothing is kept
// open between requests.
func (c *Client) FetchBalance(ctx context.Context, apiToken string) (*BalanceInfo, error) {
	token := sanitizeToken(apiToken)
	if token == "" {
		return nil, fmt.Errorf("deriv: empty API token")
	}

	conn, _, err := c.Dialer.DialContext(ctx, c.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("deriv: connect: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteJSON(map[string]interface{}{"authorize": token}); err != nil {
		return nil, fmt.Errorf("deriv: authorize: %w", err)
	}
	var authResp struct {
		MsgType   string    `json:"msg_type"`
		Error     *APIError `json:"error"`
		Authorize *struct {
			LoginID string `json:"loginid"`
		} `json:"authorize"`
	}
	if err := conn.ReadJSON(&authResp); err != nil {
		return nil, fmt.Errorf("deriv: authorize: %w", err)
	}
	if authResp.Error != nil {
		return nil, authResp.Error
	}

	if err := conn.WriteJSON(map[string]interface{}{"balance": 1}); err != nil {
		return nil, fmt.Errorf("deriv: balance: %w", err)
	}
	var balResp struct {
		MsgType string       `json:"msg_type"`
		Error   *APIError    `json:"error"`
		Balance *BalanceInfo `json:"balance"`
	}
	if err := conn.ReadJSON(&balResp); err != nil {
		return nil, fmt.Errorf("deriv: balance: %w", err)
	}
	if balResp.Error != nil {
		return nil, balResp.Error
	}
	if balResp.Balance == nil {
		return nil, fmt.Errorf("deriv: empty balance response")
	}
	return balResp.Balance, nil
}
