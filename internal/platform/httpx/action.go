package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// DefaultMaxBody caps action request bodies.
const DefaultMaxBody = 1 << 20

// ID is an identifier that accepts either a JSON number or a numeric string.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return shared.Invalid("id must be numeric")
		}
		*id = ID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		return shared.Invalid("id must be an integer")
	}
	*id = ID(v)
	return nil
}

// ActionRequest is the decoded form of an action style request: a flat JSON
// body (or query string for GET) naming the action, an optional id and the
// action's fields.
type ActionRequest struct {
	Action string
	ID     int64
	// Key is the id exactly as supplied, for resources keyed by strings.
	Key    string
	Search string
	Query  url.Values
	body   []byte
}

type actionHeader struct {
	Action string          `json:"action"`
	ID     json.RawMessage `json:"id"`
	Search string          `json:"search"`
}

// HasID reports whether a positive id was supplied.
func (a *ActionRequest) HasID() bool { return a != nil && a.ID > 0 }

// RequireID returns the numeric id or a validation error when it is absent.
func (a *ActionRequest) RequireID() (int64, error) {
	if a.HasID() {
		return a.ID, nil
	}
	if a != nil && a.Key != "" {
		return 0, shared.Invalid("id must be numeric")
	}
	return 0, shared.Invalid("id is required")
}

// RequireKey returns the id as a string or a validation error when it is absent.
func (a *ActionRequest) RequireKey() (string, error) {
	if a == nil || a.Key == "" {
		return "", shared.Invalid("id is required")
	}
	return a.Key, nil
}

// Bind decodes the request fields into target. GET requests bind nothing.
func (a *ActionRequest) Bind(target any) error {
	if a == nil || len(bytes.TrimSpace(a.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(a.body, target); err != nil {
		var se *shared.Error
		if errors.As(err, &se) {
			return se
		}
		return shared.Invalid("Invalid JSON body")
	}
	return nil
}

// ParseAction reads the action, id and body of r. The body is read once and
// kept so handlers can bind it into their own DTOs.
func ParseAction(r *http.Request, maxBytes int64) (*ActionRequest, error) {
	q := r.URL.Query()
	req := &ActionRequest{Query: q}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		req.Action = strings.TrimSpace(q.Get("action"))
		req.Search = strings.TrimSpace(q.Get("search"))
		if raw := strings.TrimSpace(q.Get("id")); raw != "" {
			req.Key = raw
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				req.ID = v
			}
		}
		if req.Action == "" {
			switch {
			case req.Key != "":
				req.Action = "get"
			case req.Search != "":
				req.Action = "search"
			default:
				req.Action = "getAll"
			}
		}
		return req, nil
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, shared.Invalid("Unable to read request body")
	}
	if int64(len(body)) > maxBytes {
		return nil, shared.Invalid("Request body too large")
	}
	req.body = body
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	var head actionHeader
	if err := json.Unmarshal(body, &head); err != nil {
		var se *shared.Error
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, shared.Invalid("Invalid JSON body")
	}
	req.Action = strings.TrimSpace(head.Action)
	req.Search = strings.TrimSpace(head.Search)
	if err := req.setID(head.ID); err != nil {
		return nil, err
	}
	return req, nil
}

func (a *ActionRequest) setID(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return shared.Invalid("Invalid JSON body")
		}
		a.Key = strings.TrimSpace(s)
		if v, err := strconv.ParseInt(a.Key, 10, 64); err == nil {
			a.ID = v
		}
		return nil
	}
	var id ID
	if err := id.UnmarshalJSON(raw); err != nil {
		return err
	}
	a.ID = int64(id)
	a.Key = strconv.FormatInt(a.ID, 10)
	return nil
}

type actionContextKey struct{}

// WithAction stores the parsed action request in ctx.
func WithAction(ctx context.Context, req *ActionRequest) context.Context {
	return context.WithValue(ctx, actionContextKey{}, req)
}

// ActionFrom returns the parsed action request stored in ctx.
func ActionFrom(ctx context.Context) *ActionRequest {
	req, _ := ctx.Value(actionContextKey{}).(*ActionRequest)
	return req
}

// ActionMiddleware parses the action request once and stores it on the context
// for permission checks and dispatch further down the chain.
func ActionMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, err := ParseAction(r, maxBytes)
			if err != nil {
				Fail(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAction(r.Context(), req)))
		})
	}
}

// Actions dispatches to a handler by action name.
type Actions map[string]http.HandlerFunc

// ServeHTTP implements http.Handler.
func (a Actions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := ActionFrom(r.Context())
	if req == nil {
		parsed, err := ParseAction(r, DefaultMaxBody)
		if err != nil {
			Fail(w, err)
			return
		}
		req = parsed
		r = r.WithContext(WithAction(r.Context(), req))
	}
	h, ok := a[req.Action]
	if !ok {
		Error(w, http.StatusBadRequest, "Invalid action")
		return
	}
	h(w, r)
}
