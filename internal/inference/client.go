package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client is a client for the inference service API. All uploads go out as
// multipart form data under the field name "image".
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Prediction represents one detection in a classification response.
type Prediction struct {
	PredictedClass    string  `json:"predicted_class"`
	Quality           string  `json:"quality"`
	QualityConfidence float64 `json:"quality_confidence"`
	Confidence        float64 `json:"confidence"`
}

// PredictResponse represents the classification result. An empty Predictions
// slice is a valid response (nothing detected).
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Image is a binary explanation overlay returned by the service.
type Image struct {
	Data        []byte
	ContentType string
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new inference service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Predict classifies a single image and returns the ordered prediction list.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) ([]Prediction, error) {
	resp, err := c.postImage(ctx, "/predict", filename, image)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Predictions, nil
}

// GradCAM returns the Grad-CAM heatmap overlay for the image.
func (c *Client) GradCAM(ctx context.Context, filename string, image io.Reader) (*Image, error) {
	resp, err := c.postImage(ctx, "/gradcam", filename, image)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, string(body))
	}

	return readImage(resp)
}

// SHAP returns the SHAP explanation overlay. On failure the service may send
// a JSON {error} payload instead of a blob; that message is surfaced as the
// error.
func (c *Client) SHAP(ctx context.Context, filename string, image io.Reader) (*Image, error) {
	resp, err := c.postImage(ctx, "/shap", filename, image)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s", errResp.Error)
		}
		return nil, fmt.Errorf("SHAP generation failed: status %d", resp.StatusCode)
	}

	return readImage(resp)
}

func (c *Client) postImage(ctx context.Context, path, filename string, image io.Reader) (*http.Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func readImage(resp *http.Response) (*Image, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return &Image{Data: data, ContentType: contentType}, nil
}
