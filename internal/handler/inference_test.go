package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"fruitsight/internal/inference"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInferenceRouter(upstream *httptest.Server) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewInferenceHandler(inference.NewClient(upstream.URL), log)

	router := gin.New()
	router.POST("/api/predict", h.Predict)
	router.POST("/api/gradcam", h.GradCAM)
	router.POST("/api/shap", h.SHAP)
	return router
}

func uploadImage(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "fruit.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPredictProxy_PassesThroughPredictions(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		_, _, err := r.FormFile("image")
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"predictions":[{"predicted_class":"apple","quality":"fresh","quality_confidence":90,"confidence":95}]}`)
	}))
	defer upstream.Close()

	rec := uploadImage(t, newInferenceRouter(upstream), "/api/predict")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"predicted_class":"apple"`)
}

func TestPredictProxy_MissingImage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	router := newInferenceRouter(upstream)
	req := httptest.NewRequest(http.MethodPost, "/api/predict", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Please upload an image"}`, rec.Body.String())
}

func TestGradCAMProxy_PassesThroughImage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gradcam", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("heatmap"))
	}))
	defer upstream.Close()

	rec := uploadImage(t, newInferenceRouter(upstream), "/api/gradcam")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "heatmap", rec.Body.String())
}

func TestSHAPProxy_SurfacesUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"SHAP explainer unavailable"}`)
	}))
	defer upstream.Close()

	rec := uploadImage(t, newInferenceRouter(upstream), "/api/shap")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"message":"SHAP explainer unavailable"}`, rec.Body.String())
}

func TestGradCAMProxy_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	rec := uploadImage(t, newInferenceRouter(upstream), "/api/gradcam")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"message":"Grad-CAM failed"}`, rec.Body.String())
}
