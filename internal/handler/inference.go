package handler

import (
	"net/http"

	"fruitsight/internal/inference"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InferenceHandler proxies image uploads from the dashboard to the external
// inference service. All routes sit behind the auth middleware.
type InferenceHandler interface {
	Predict(c *gin.Context)
	GradCAM(c *gin.Context)
	SHAP(c *gin.Context)
}

type inferenceHandler struct {
	client *inference.Client
	log    *logrus.Logger
}

func NewInferenceHandler(client *inference.Client, log *logrus.Logger) InferenceHandler {
	return &inferenceHandler{client: client, log: log}
}

func (h *inferenceHandler) Predict(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please upload an image"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Errorf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	defer file.Close()

	predictions, err := h.client.Predict(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.log.Errorf("Prediction request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to analyze image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

func (h *inferenceHandler) GradCAM(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please upload an image"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Errorf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	defer file.Close()

	img, err := h.client.GradCAM(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.log.Errorf("Grad-CAM request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Grad-CAM failed"})
		return
	}

	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (h *inferenceHandler) SHAP(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please upload an image"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Errorf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	defer file.Close()

	img, err := h.client.SHAP(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.log.Errorf("SHAP request failed: %v", err)
		// The upstream error payload already carries the reason.
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
		return
	}

	c.Data(http.StatusOK, img.ContentType, img.Data)
}
