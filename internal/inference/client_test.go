package inference

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict_ParsesPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "apple.jpg", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-image-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"predictions":[
			{"predicted_class":"apple","quality":"fresh","quality_confidence":97.2,"confidence":99.1},
			{"predicted_class":"banana","quality":"rotten","quality_confidence":88.0,"confidence":76.5}
		]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	preds, err := client.Predict(context.Background(), "apple.jpg", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "apple", preds[0].PredictedClass)
	assert.Equal(t, "fresh", preds[0].Quality)
	assert.InDelta(t, 97.2, preds[0].QualityConfidence, 0.001)
	assert.InDelta(t, 99.1, preds[0].Confidence, 0.001)
}

func TestPredict_EmptyListIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"predictions":[]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	preds, err := client.Predict(context.Background(), "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestPredict_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Predict(context.Background(), "a.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGradCAM_ReturnsImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gradcam", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	img, err := client.GradCAM(context.Background(), "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img.Data)
}

func TestSHAP_ReturnsImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shap", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("shap-bytes"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	img, err := client.SHAP(context.Background(), "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("shap-bytes"), img.Data)
}

func TestSHAP_SurfacesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"SHAP explainer unavailable"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SHAP(context.Background(), "a.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, "SHAP explainer unavailable", err.Error())
}

func TestSHAP_GenericErrorWithoutPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SHAP(context.Background(), "a.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestGradCAM_DefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	img, err := client.GradCAM(context.Background(), "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
}
