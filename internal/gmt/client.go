package gmt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Green Metrics Tool API.
type Client struct {
	BaseURL    string
	Token      string
	RemoveIdle bool
	HTTPClient *http.Client
}

// NewClient creates a client for the given API base URL. An empty token
// disables the X-Authentication header.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimSpace(baseURL),
		Token:      strings.TrimSpace(token),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// SubmitSoftware posts one measurement job. String payload fields are
// trimmed before sending. The returned error is non-nil only for transport
// failures; API-level failures come back through the Result kind.
func (c *Client) SubmitSoftware(ctx context.Context, software Software) (Result, error) {
	return c.do(ctx, http.MethodPost, "/v1/software/add", software.trimmed())
}

// ListMachines fetches the measurement machines advertised by the API.
// Machines arrive as positional rows: [id, name, active, ...].
func (c *Client) ListMachines(ctx context.Context) ([]Machine, error) {
	res, err := c.do(ctx, http.MethodGet, "/v1/machines", nil)
	if err != nil {
		return nil, err
	}

	switch res.Kind {
	case Success:
	case Accepted, EmptyNoContent:
		return nil, nil
	default:
		return nil, errors.New(res.Message)
	}

	obj, ok := res.Body.(map[string]any)
	if !ok {
		return nil, nil
	}
	rows, ok := obj["data"].([]any)
	if !ok {
		return nil, nil
	}

	machines := make([]Machine, 0, len(rows))
	for _, row := range rows {
		fields, ok := row.([]any)
		if !ok {
			continue
		}
		var machine Machine
		if len(fields) > 0 {
			machine.ID = fields[0]
		}
		if len(fields) > 1 {
			if name, ok := fields[1].(string); ok {
				machine.Name = name
			} else if fields[1] != nil {
				machine.Name = fmt.Sprintf("%v", fields[1])
			}
		}
		if len(fields) > 2 {
			machine.Active = truthy(fields[2])
		}
		machines = append(machines, machine)
	}
	return machines, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (Result, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	if method == http.MethodGet && c.RemoveIdle {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "remove_idle=true"
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Result{Kind: ProtocolError, Message: err.Error()}, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return Result{Kind: ProtocolError, Message: err.Error()}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("X-Authentication", c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{Kind: ProtocolError, Message: err.Error()}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Kind: ProtocolError, Message: err.Error()}, fmt.Errorf("read response: %w", err)
	}

	return classify(resp.StatusCode, raw), nil
}

// classify maps a reply onto the closed Result set. The precedence is
// fixed: 204, then 202, then non-2xx statuses, then body parsing.
func classify(status int, raw []byte) Result {
	switch {
	case status == http.StatusNoContent:
		return Result{Kind: EmptyNoContent, Message: "no data (HTTP 204)", StatusCode: status}
	case status == http.StatusAccepted:
		return Result{Kind: Accepted, StatusCode: status}
	case status < 200 || status >= 300:
		parsed, ok := parseJSON(raw)
		if !ok {
			return Result{Kind: Failure, Message: fmt.Sprintf("HTTP %d: %s", status, raw), StatusCode: status}
		}
		if obj, ok := parsed.(map[string]any); ok {
			if errVal, ok := obj["err"]; ok {
				return Result{Kind: Failure, Message: fmt.Sprintf("HTTP %d: %v", status, errVal), Body: parsed, StatusCode: status}
			}
		}
		return Result{Kind: Failure, Message: fmt.Sprintf("HTTP %d: %v", status, parsed), Body: parsed, StatusCode: status}
	}

	parsed, ok := parseJSON(raw)
	if !ok {
		return Result{Kind: ProtocolError, Message: fmt.Sprintf("expected JSON but got: %s...", snippet(raw)), StatusCode: status}
	}

	if obj, ok := parsed.(map[string]any); ok {
		if success, _ := obj["success"].(bool); !success {
			return Result{Kind: Failure, Message: failureMessage(obj["err"]), Body: parsed, StatusCode: status}
		}
	}
	return Result{Kind: Success, Body: parsed, StatusCode: status}
}

// failureMessage extracts a readable message from the API's err field: the
// first list element's msg when present, the element's string form
// otherwise, or the err value's own string form for non-list shapes.
func failureMessage(errVal any) string {
	list, ok := errVal.([]any)
	if !ok || len(list) == 0 {
		return fmt.Sprintf("%v", errVal)
	}
	if obj, ok := list[0].(map[string]any); ok {
		if msg, ok := obj["msg"].(string); ok && msg != "" {
			return msg
		}
		return fmt.Sprintf("%v", errVal)
	}
	if msg := fmt.Sprintf("%v", list[0]); msg != "" {
		return msg
	}
	return fmt.Sprintf("%v", errVal)
}

func parseJSON(raw []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return parsed, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	}
	return true
}

func snippet(raw []byte) string {
	const maxLen = 200
	if len(raw) <= maxLen {
		return string(raw)
	}
	return string(raw[:maxLen])
}
