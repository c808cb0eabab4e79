package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// errorBody mirrors the server's error envelope.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

type loginResponse struct {
	Message string              `json:"message"`
	User    *domain.SessionUser `json:"user"`
}

// Client talks to the storefront REST API. It satisfies session.AuthClient
// and checkout.OrderClient.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.Breaker[*http.Response]
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[*http.Response](breakerSettings()),
	}
}

// breakerSettings trips only on connectivity failures. Answers such as
// validation or unauthorized errors mean the API is up.
func breakerSettings() circuitbreaker.Settings {
	s := circuitbreaker.DefaultSettings("storefront-api")
	s.IsSuccessful = func(err error) bool {
		return domain.KindOf(err) != domain.KindConnectivity
	}
	return s
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, http.StatusOK, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/register", body, http.StatusCreated, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, domain.NewConnectivity("login response without user", nil)
	}
	return resp.User, nil
}

func (c *Client) Checkout(ctx context.Context, req *domain.CheckoutRequest) (int64, error) {
	var resp domain.CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/checkout", req, http.StatusOK, &resp); err != nil {
		return 0, err
	}
	return resp.OrderID, nil
}

func (c *Client) Orders(ctx context.Context, userID int64) ([]domain.Order, error) {
	var orders []domain.Order
	path := "/api/orders/" + url.PathEscape(strconv.FormatInt(userID, 10))
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, domain.NewConnectivity("storefront api unreachable", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			defer resp.Body.Close()
			return nil, decodeError(resp)
		}
		return resp, nil
	})
	if errors.Is(err, circuitbreaker.ErrUnavailable) {
		return domain.NewConnectivity("storefront api temporarily unavailable", err)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewConnectivity("unreadable api response", err)
	}
	return nil
}

// decodeError turns the server's error envelope back into a domain error.
// Unknown bodies on 5xx are treated as connectivity problems.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body errorBody
	err := json.Unmarshal(raw, &body)
	if body.Error == "" {
		body.Error = body.Message
	}
	if err != nil || body.Error == "" {
		cause := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError {
			return domain.NewConnectivity("storefront api error", cause)
		}
		return &domain.Error{Kind: domain.KindUnknown, Message: http.StatusText(resp.StatusCode), Err: cause}
	}

	kind := domain.KindFromCode(body.Code)
	if kind == domain.KindUnknown {
		kind = kindFromStatus(resp.StatusCode)
	}
	derr := &domain.Error{Kind: kind, Message: body.Error}
	for field := range body.Details {
		derr.Fields = append(derr.Fields, field)
	}
	sort.Strings(derr.Fields)
	return derr
}

// kindFromStatus covers servers that answer without a code field.
func kindFromStatus(status int) domain.Kind {
	switch {
	case status == http.StatusBadRequest:
		return domain.KindValidation
	case status == http.StatusUnauthorized:
		return domain.KindUnauthorized
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusConflict:
		return domain.KindConflict
	case status >= http.StatusInternalServerError:
		return domain.KindConnectivity
	default:
		return domain.KindUnknown
	}
}
