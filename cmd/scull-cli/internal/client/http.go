package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rtbo/scull/pkg/network"
	"github.com/spf13/viper"
)

var errInvalidEndpoint = errors.New("provided node endpoint is incorrect")

// APIError is a rejection of the request by the node data API.
type APIError struct {
	// HTTP status of the response.
	Status int

	// Error message decoded from the response body.
	Reason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("node API: %s (status %d)", e.Reason, e.Status)
}

// Client performs operations against the node data API.
type Client struct {
	base string

	h *http.Client
}

// GetClientByFlag returns a data API client for the endpoint kept under
// the given viper key. The endpoint is accepted in multiaddr or
// '<host>:<port>' form.
func GetClientByFlag(endpointFlag string) (*Client, error) {
	var addr network.Address

	err := addr.FromString(viper.GetString(endpointFlag))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidEndpoint, err)
	}

	return GetClient(addr), nil
}

// GetClient returns a data API client bound to the given address.
func GetClient(addr network.Address) *Client {
	return &Client{
		base: "http://" + addr.HostAddr() + "/v1",
		h:    new(http.Client),
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return http.NewRequestWithContext(ctx, method, u, body)
}

// do sends the request and returns the response if its status matches
// the expectation. Any other status is decoded into an APIError.
func (c *Client) do(req *http.Request, expect int) (*http.Response, error) {
	resp, err := c.h.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != expect {
		defer resp.Body.Close()

		return nil, decodeAPIError(resp)
	}

	return resp, nil
}

// decodeAPIError turns a non-2xx response into an APIError. The body
// is decoded best-effort: a response without the expected JSON error
// payload falls back to the generic status text.
func decodeAPIError(resp *http.Response) error {
	var p struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &p); err != nil || p.Error == "" {
		p.Error = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		Status: resp.StatusCode,
		Reason: p.Error,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req, http.StatusOK)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}
