package script

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	maxResponseBytes = 1 << 20
)

// HTTPResponse is what HttpClient calls return to a function.
type HTTPResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// httpCapability is bound to a single run; requests are cancelled with it.
type httpCapability struct {
	ctx context.Context
	cli *http.Client
}

func (h *httpCapability) Get(url string, headers map[string]string) (*HTTPResponse, error) {
	return h.do(http.MethodGet, url, headers, nil)
}

func (h *httpCapability) Delete(url string, headers map[string]string) (*HTTPResponse, error) {
	return h.do(http.MethodDelete, url, headers, nil)
}

func (h *httpCapability) Post(url string, headers map[string]string, body interface{}) (*HTTPResponse, error) {
	return h.do(http.MethodPost, url, headers, body)
}

func (h *httpCapability) Put(url string, headers map[string]string, body interface{}) (*HTTPResponse, error) {
	return h.do(http.MethodPut, url, headers, body)
}

func (h *httpCapability) do(method, url string, headers map[string]string, body interface{}) (*HTTPResponse, error) {
	var reader io.Reader
	isJSON := false
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		reader = strings.NewReader(string(data))
		isJSON = true
	}

	req, err := http.NewRequestWithContext(h.ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, maxResponseBytes)
	}

	out := &HTTPResponse{Status: resp.StatusCode, Body: string(data), Headers: map[string]string{}}
	for k := range resp.Header {
		out.Headers[k] = resp.Header.Get(k)
	}
	return out, nil
}
