package dashboard

import (
	"fmt"
	"os"

	"fruitsight/internal/inference"
)

// ImageHandle is a released-on-demand reference to overlay bytes written to
// a temp file, the terminal analogue of an object URL.
type ImageHandle struct {
	path string
}

// NewImageHandle writes the image bytes to a temp file and returns a handle
// to it.
func NewImageHandle(data []byte, pattern string) (*ImageHandle, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close temp image: %w", err)
	}
	return &ImageHandle{path: f.Name()}, nil
}

func (h *ImageHandle) Path() string {
	return h.path
}

// Release removes the backing file. Safe on a nil handle.
func (h *ImageHandle) Release() {
	if h == nil || h.path == "" {
		return
	}
	os.Remove(h.path)
	h.path = ""
}

// Results holds everything the dashboard renders for the active file.
// Exactly one source file is active at a time; selecting a new one discards
// every prior result before any new request goes out.
type Results struct {
	SelectedFile string
	Predictions  []inference.Prediction
	GradCAM      *ImageHandle
	SHAP         *ImageHandle
	Err          string

	// Classification and Grad-CAM share one busy flag; SHAP tracks its own
	// so a running SHAP request never blocks the classify path.
	busy     bool
	shapBusy bool
}

// SelectFile makes path the active file, releasing prior overlays and
// clearing predictions and the error message.
func (r *Results) SelectFile(path string) {
	r.GradCAM.Release()
	r.SHAP.Release()
	r.SelectedFile = path
	r.Predictions = nil
	r.GradCAM = nil
	r.SHAP = nil
	r.Err = ""
}

// SetPredictions replaces the prediction list (last write wins).
func (r *Results) SetPredictions(preds []inference.Prediction) {
	r.Predictions = preds
	r.Err = ""
}

// SetGradCAM replaces the Grad-CAM overlay, releasing the previous handle.
func (r *Results) SetGradCAM(h *ImageHandle) {
	r.GradCAM.Release()
	r.GradCAM = h
}

// SetSHAP replaces the SHAP overlay, releasing the previous handle.
func (r *Results) SetSHAP(h *ImageHandle) {
	r.SHAP.Release()
	r.SHAP = h
	r.Err = ""
}

func (r *Results) SetError(msg string) {
	r.Err = msg
}

// BeginOperation marks the shared classify/Grad-CAM flag busy; it reports
// false when an operation is already running.
func (r *Results) BeginOperation() bool {
	if r.busy {
		return false
	}
	r.busy = true
	return true
}

func (r *Results) EndOperation() {
	r.busy = false
}

// BeginSHAP marks the SHAP flag busy independently of the shared flag.
func (r *Results) BeginSHAP() bool {
	if r.shapBusy {
		return false
	}
	r.shapBusy = true
	return true
}

func (r *Results) EndSHAP() {
	r.shapBusy = false
}

// Close releases any overlays still held.
func (r *Results) Close() {
	r.GradCAM.Release()
	r.SHAP.Release()
	r.GradCAM = nil
	r.SHAP = nil
}
