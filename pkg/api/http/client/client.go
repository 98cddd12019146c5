package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/RaythaHQ/raytha-sub006/pkg/api/http/common"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

type Client struct {
	url  *url.URL
	http *http.Client
}

func New(address string) (*Client, error) {
	u, err := url.Parse(address)
	return &Client{url: u, http: &http.Client{}}, err
}

// WithHTTPClient sets the client used for requests.
func (c *Client) WithHTTPClient(cli *http.Client) *Client {
	c.http = cli
	return c
}

func (c *Client) Enqueue(ctx context.Context, req *structs.EnqueueRequest) (*structs.EnqueueResponse, error) {
	addr := c.addr(common.API_JOBS)
	var out structs.EnqueueResponse
	return &out, c.post(ctx, addr, req, &out)
}

func (c *Client) Dispatch(ctx context.Context, evt *structs.Event) (*structs.DispatchResponse, error) {
	addr := c.addr(common.API_EVENTS)
	var out structs.DispatchResponse
	return &out, c.post(ctx, addr, evt, &out)
}

func (c *Client) Job(ctx context.Context, id string) (*structs.Job, error) {
	addr := c.addr(strings.Replace(common.API_JOB, "{id}", url.PathEscape(id), 1))
	var out structs.Job
	return &out, c.get(ctx, addr, &out)
}

func (c *Client) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	addr := c.addr(common.API_JOBS)
	setQueryString(addr, q)
	var out []*structs.Job
	return out, c.get(ctx, addr, &out)
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
