// Package dashboard contains the client side of the application: the API
// client for the backend, the session state that gates the dashboard view,
// and the per-file result set the view renders.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"fruitsight/internal/inference"

	"go.uber.org/zap"
)

// ErrNetwork replaces raw transport failures so the view can show a
// connectivity hint instead of a Go error string.
var ErrNetwork = errors.New("Network error - check your connection")

// Client talks to the backend API on behalf of the dashboard.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new backend API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// User is the account echo returned by signup.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignupResponse is the body of a successful signup.
type SignupResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type apiMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*SignupResponse, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	resp, err := c.postJSON(ctx, "/api/auth/signup", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var result SignupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode signup response: %w", err)
	}
	return &result, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.postJSON(ctx, "/api/auth/login", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	return result.Token, nil
}

// Logout clears the server-side login flag for the given email. The token is
// not involved; the session simply forgets it afterwards.
func (c *Client) Logout(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, "/api/auth/logout", map[string]string{"email": email})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// Classify uploads the file and returns the prediction list.
func (c *Client) Classify(ctx context.Context, token, path string) ([]inference.Prediction, error) {
	resp, err := c.postFile(ctx, "/api/predict", token, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result inference.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return result.Predictions, nil
}

// GradCAM uploads the file and returns the heatmap overlay bytes.
func (c *Client) GradCAM(ctx context.Context, token, path string) ([]byte, error) {
	resp, err := c.postFile(ctx, "/api/gradcam", token, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	return io.ReadAll(resp.Body)
}

// SHAP uploads the file and returns the explanation overlay bytes. Upstream
// failures arrive as a JSON message and surface as the error text.
func (c *Client) SHAP(ctx context.Context, token, path string) ([]byte, error) {
	resp, err := c.postFile(ctx, "/api/shap", token, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Request failed", zap.String("path", path), zap.Error(err))
		return nil, networkError(err)
	}
	return resp, nil
}

func (c *Client) postFile(ctx context.Context, urlPath, token, filePath string) (*http.Response, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+urlPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Upload failed", zap.String("path", urlPath), zap.Error(err))
		return nil, networkError(err)
	}
	return resp, nil
}

// networkError collapses transport-level failures into ErrNetwork, keeping
// everything else intact.
func networkError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ErrNetwork
	}
	return err
}

// apiError extracts the server's message (or error) field from a non-2xx
// response.
func apiError(resp *http.Response) error {
	var msg apiMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
		if msg.Message != "" {
			return errors.New(msg.Message)
		}
		if msg.Error != "" {
			return errors.New(msg.Error)
		}
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
