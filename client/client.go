// Package client is a Go client of the chat HTTP API. Conversation implements
// the polling synchronisation on top of it: one history fetch, then
// incremental fetches from the highest id already seen.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"chat-sync/contract"
	"chat-sync/errors"

	"github.com/google/uuid"
)

// APIError is a non-2xx answer of the server. It unwraps to the matching
// kind of package errors so callers can use errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

var sentinelByCode = map[errors.Kind]error{
	errors.KindInvalidInput:        errors.ErrInvalidInput,
	errors.KindUnauthorized:        errors.ErrUnauthorized,
	errors.KindInvalidCredentials:  errors.ErrInvalidCredentials,
	errors.KindUnknownReceiver:     errors.ErrUnknownReceiver,
	errors.KindMissingPeer:         errors.ErrMissingPeer,
	errors.KindNotFoundOrForbidden: errors.ErrNotFoundOrForbidden,
	errors.KindStoreUnavailable:    errors.ErrStoreUnavailable,
}

func (e *APIError) Unwrap() error {
	return sentinelByCode[errors.Kind(e.Code)]
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	mu    sync.RWMutex
	token string
}

func New(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient, log: log}
}

// Authenticate submits the credentials and keeps the returned bearer token
// for every later call.
func (c *Client) Authenticate(ctx context.Context, handle, secret string) (contract.AuthResponse, error) {
	var response contract.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth", nil, contract.AuthRequest{Handle: handle, Password: secret}, &response); err != nil {
		return contract.AuthResponse{}, err
	}
	c.SetToken(response.Token)
	return response, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Me(ctx context.Context) (contract.MeResponse, error) {
	var response contract.MeResponse
	err := c.do(ctx, http.MethodGet, "/me", nil, nil, &response)
	return response, err
}

func (c *Client) Peers(ctx context.Context) ([]contract.Peer, error) {
	var response contract.UsersResponse
	err := c.do(ctx, http.MethodGet, "/users", nil, nil, &response)
	return response.Users, err
}

// History returns up to limit of the latest messages with peer, oldest first.
// A limit <= 0 lets the server apply its default.
func (c *Client) History(ctx context.Context, peer int64, limit int) ([]contract.Message, error) {
	query := url.Values{"with": {strconv.FormatInt(peer, 10)}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var response contract.MessagesResponse
	err := c.do(ctx, http.MethodGet, "/messages/history", query, nil, &response)
	return response.Messages, err
}

func (c *Client) Since(ctx context.Context, peer, sinceID int64) ([]contract.Message, error) {
	query := url.Values{
		"with":     {strconv.FormatInt(peer, 10)},
		"since_id": {strconv.FormatInt(sinceID, 10)},
	}
	var response contract.MessagesResponse
	err := c.do(ctx, http.MethodGet, "/messages/new", query, nil, &response)
	return response.Messages, err
}

// Send is not idempotent: retrying after a network failure may store the message twice.
func (c *Client) Send(ctx context.Context, to int64, content string) (contract.Message, error) {
	var response contract.SendResponse
	err := c.do(ctx, http.MethodPost, "/messages/send", nil, contract.SendRequest{To: to, Content: content}, &response)
	return response.Message, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	query := url.Values{"id": {strconv.FormatInt(id, 10)}}
	return c.do(ctx, http.MethodDelete, "/messages/delete", query, nil, &contract.OKResponse{})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr contract.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		c.log.Debug("Request rejected", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)
		return &APIError{Status: resp.StatusCode, Code: apiErr.Error.Code, Message: apiErr.Error.Message}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
