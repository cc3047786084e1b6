package sankhya

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/eletrohub/backend/internal/domain"
)

const (
	authenticatePath = "/authenticate"
	gatewayPath      = "/gateway/v1/mge/service.sbr"
	queryService     = "DbExplorerSP.executeQuery"

	defaultPageSize = 100
)

// Client talks to the Sankhya ERP gateway. Authentication is OAuth 2.0
// client credentials plus the integration X-Token; the bearer token is
// cached until shortly before expiry.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	clientID    string
	secret      string
	xToken      string
	rateLimiter *rate.Limiter

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewClient creates a Sankhya client. rps caps outbound gateway calls.
func NewClient(baseURL, clientID, secret, xToken string, timeout time.Duration, rps float64) *Client {
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		clientID:    clientID,
		secret:      secret,
		xToken:      xToken,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 5),
	}
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	BearerToken string `json:"bearerToken"`
	ExpiresIn   int    `json:"expires_in"`
}

type queryResponse struct {
	ResponseBody struct {
		Rows []json.RawMessage `json:"rows"`
	} `json:"responseBody"`
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiresAt) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+authenticatePath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Token", c.xToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrERPFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("[SANKHYA] Auth failed - Status: %d, Body: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: auth status %d", domain.ErrERPFailure, resp.StatusCode)
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}

	switch {
	case auth.AccessToken != "":
		c.token = auth.AccessToken
		ttl := auth.ExpiresIn
		if ttl <= 0 {
			ttl = 3600
		}
		c.expiresAt = time.Now().Add(time.Duration(ttl)*time.Second - time.Minute)
	case auth.BearerToken != "":
		c.token = auth.BearerToken
		c.expiresAt = time.Now().Add(59 * time.Minute)
	default:
		return "", fmt.Errorf("%w: no token in auth response", domain.ErrERPFailure)
	}

	log.Printf("[SANKHYA] Authenticated, token valid until %s", c.expiresAt.Format(time.RFC3339))
	return c.token, nil
}

// ExecuteQuery runs a SQL query through DbExplorerSP and returns the raw
// result rows. Retries up to 3 times on transient failures.
func (c *Client) ExecuteQuery(ctx context.Context, sql string) ([]json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"serviceName": queryService,
		"requestBody": map[string]string{"sql": strings.TrimSpace(sql)},
	})
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("serviceName", queryService)
	params.Set("outputType", "json")
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, gatewayPath, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		token, err := c.authenticate(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(string(payload)))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[SANKHYA] Request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrERPFailure, err)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			log.Printf("[SANKHYA] Token rejected (attempt %d), re-authenticating", attempt)
			c.mu.Lock()
			c.token = ""
			c.mu.Unlock()
			lastErr = fmt.Errorf("%w: status %d", domain.ErrERPFailure, resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("[SANKHYA] Gateway error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrERPFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var qr queryResponse
		if err := json.Unmarshal(body, &qr); err != nil {
			return nil, fmt.Errorf("failed to decode query response: %w", err)
		}
		return qr.ResponseBody.Rows, nil
	}

	log.Printf("[SANKHYA] All retries failed")
	return nil, lastErr
}

// FetchProducts reads one page of the product view. Oracle pagination
// uses ROWNUM windows.
func (c *Client) FetchProducts(ctx context.Context, page, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := page * limit

	sql := fmt.Sprintf(`
SELECT * FROM (
  SELECT
    CODPROD, DESCRPROD, MARCA, MARCA_CONTROLE, CODVOL,
    ATIVO, ESTOQUE, PRECO_CONSUMIDOR, CATEGORIA_MACRO, INDICE_POPULARIDADE,
    ROWNUM AS RN
  FROM VW_PORTAL_PRODUTOS
  WHERE ROWNUM <= %d
)
WHERE RN > %d`, offset+limit, offset)

	return c.ExecuteQuery(ctx, sql)
}

// FetchAllProducts pages through the whole view until a short page.
func (c *Client) FetchAllProducts(ctx context.Context) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for page := 0; ; page++ {
		rows, err := c.FetchProducts(ctx, page, defaultPageSize)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		all = append(all, rows...)
		log.Printf("[SANKHYA] Page %d: %d products (accumulated: %d)", page+1, len(rows), len(all))

		if len(rows) < defaultPageSize {
			break
		}
	}
	return all, nil
}
