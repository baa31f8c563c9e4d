package panelclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/aliafrazeh/alamor-vpn-bot/internal/constants"
	apperrors "github.com/aliafrazeh/alamor-vpn-bot/internal/errors"
	"github.com/aliafrazeh/alamor-vpn-bot/internal/models"
)

// apiResponse is the response envelope shared by all x-ui panel variants
type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

// baseClient implements the shared panel protocol; vendor types configure
// the inbounds base path and the list method.
type baseClient struct {
	httpClient  *resty.Client
	server      models.Server
	cookieCache *cache.Cache
	logger      *logrus.Logger

	inboundsPath string
	listPath     string
	listViaPost  bool
}

func newBaseClient(server models.Server, logger *logrus.Logger, inboundsPath, listPath string, listViaPost bool) *baseClient {
	httpClient := resty.New().
		SetTimeout(constants.DefaultTimeout * time.Second).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryWaitTime * time.Second).
		SetRetryMaxWaitTime(constants.DefaultRetryMaxWaitTime * time.Second).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})

	return &baseClient{
		httpClient:   httpClient,
		server:       server,
		cookieCache:  cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger:       logger,
		inboundsPath: inboundsPath,
		listPath:     listPath,
		listViaPost:  listViaPost,
	}
}

// Authenticate logs in to the panel and caches the session cookies
func (c *baseClient) Authenticate(ctx context.Context) error {
	if _, found := c.cookieCache.Get("session"); found {
		return nil
	}

	c.logger.Infof("Logging in to panel %s at %s", c.server.Name, c.server.APIURL)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"username": c.server.Username,
			"password": c.server.Password,
		}).
		Post(fmt.Sprintf("%s/login", c.server.APIURL))

	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Errorf("Login failed - URL: %s/login, Status: %d, Response: %s",
			c.server.APIURL, resp.StatusCode(), string(resp.Body()))
		return &apperrors.PanelAPIError{Operation: "login", Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	if !apiResp.Success {
		return fmt.Errorf("login failed: %s", apiResp.Msg)
	}

	cookies := resp.Cookies()
	if len(cookies) > 0 {
		c.cookieCache.Set("session", cookies, cache.DefaultExpiration)
		return nil
	}

	return errors.New("no session cookie received from server")
}

// ListInbounds fetches the full inbound catalog from the panel
func (c *baseClient) ListInbounds(ctx context.Context) ([]models.Inbound, error) {
	body, err := c.request(ctx, c.listMethod(), fmt.Sprintf("%s%s%s", c.server.APIURL, c.inboundsPath, c.listPath), nil)
	if err != nil {
		return nil, fmt.Errorf("list inbounds: %w", err)
	}

	var inbounds []models.Inbound
	if err := json.Unmarshal(body, &inbounds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inbounds: %w", err)
	}

	return inbounds, nil
}

// GetInbound fetches a single inbound by id. A missing inbound is reported
// as a nil result, not an error.
func (c *baseClient) GetInbound(ctx context.Context, id int) (*models.Inbound, error) {
	body, err := c.request(ctx, http.MethodGet, fmt.Sprintf("%s%s/get/%d", c.server.APIURL, c.inboundsPath, id), nil)
	if err != nil {
		return nil, fmt.Errorf("get inbound %d: %w", id, err)
	}

	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var inbound models.Inbound
	if err := json.Unmarshal(body, &inbound); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inbound %d: %w", id, err)
	}

	return &inbound, nil
}

// AddClient registers a client on an inbound. The client entry travels as a
// JSON string inside the settings field, matching the panel API shape.
func (c *baseClient) AddClient(ctx context.Context, inboundID int, client models.Client) error {
	settings := map[string]interface{}{
		"clients": []map[string]interface{}{client.ToDictionary()},
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	requestBody := map[string]interface{}{
		"id":       inboundID,
		"settings": string(settingsJSON),
	}

	c.logger.Infof("Adding client %s to inbound %d on %s", client.Email, inboundID, c.server.Name)

	_, err = c.request(ctx, http.MethodPost, fmt.Sprintf("%s%s/addClient", c.server.APIURL, c.inboundsPath), requestBody)
	if err != nil {
		return fmt.Errorf("add client: %w", err)
	}

	return nil
}

func (c *baseClient) listMethod() string {
	if c.listViaPost {
		return http.MethodPost
	}
	return http.MethodGet
}

// request performs an authenticated panel call and unwraps the response
// envelope. An expired session (401) is dropped from the cache and the call
// retried once after a fresh login.
func (c *baseClient) request(ctx context.Context, method, url string, body interface{}) (json.RawMessage, error) {
	return c.requestWithRetry(ctx, method, url, body, true)
}

func (c *baseClient) requestWithRetry(ctx context.Context, method, url string, body interface{}, retryAuth bool) (json.RawMessage, error) {
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}

	cookies, _ := c.cookieCache.Get("session")

	req := c.httpClient.R().
		SetContext(ctx).
		SetCookies(cookies.([]*http.Cookie))
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusUnauthorized && retryAuth {
		c.cookieCache.Delete("session")
		return c.requestWithRetry(ctx, method, url, body, false)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Errorf("Panel request failed - URL: %s, Status: %d, Response: %s", url, resp.StatusCode(), string(resp.Body()))
		return nil, &apperrors.PanelAPIError{Operation: method + " " + url, Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	if len(resp.Body()) == 0 {
		return nil, errors.New("empty response from server")
	}

	var apiResp apiResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !apiResp.Success {
		return nil, fmt.Errorf("panel refused request: %s", apiResp.Msg)
	}

	return apiResp.Obj, nil
}
