package dashboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// App drives the terminal dashboard: a login view gates the dashboard view,
// switching on the in-memory session state after a successful login.
type App struct {
	client  *Client
	session Session
	results Results
	in      *bufio.Scanner
	out     io.Writer
	logger  *zap.Logger
}

func NewApp(client *Client, logger *zap.Logger) *App {
	return &App{
		client: client,
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
		logger: logger,
	}
}

// Run loops until the user quits. Not logged in → login view; logged in →
// dashboard view.
func (a *App) Run(ctx context.Context) {
	defer a.results.Close()

	for {
		var done bool
		if a.session.LoggedIn {
			done = a.dashboardView(ctx)
		} else {
			done = a.loginView(ctx)
		}
		if done {
			return
		}
	}
}

func (a *App) loginView(ctx context.Context) (done bool) {
	fmt.Fprintln(a.out, "\nFruit Quality Classifier")
	fmt.Fprintln(a.out, "commands: login, signup, quit")

	switch a.prompt("> ") {
	case "login":
		email := a.prompt("email: ")
		password := a.prompt("password: ")
		token, err := a.client.Login(ctx, email, password)
		if err != nil {
			fmt.Fprintf(a.out, "Login failed: %v\n", err)
			return false
		}
		a.session.Begin(token, "", email)
		fmt.Fprintln(a.out, "Login successful")
	case "signup":
		name := a.prompt("name: ")
		email := a.prompt("email: ")
		password := a.prompt("password: ")
		confirm := a.prompt("confirm password: ")
		if password != confirm {
			fmt.Fprintln(a.out, "Passwords do not match")
			return false
		}
		resp, err := a.client.Signup(ctx, name, email, password)
		if err != nil {
			fmt.Fprintf(a.out, "Signup failed: %v\n", err)
			return false
		}
		// Account creation returns to the login form; the user logs in
		// explicitly with the new credentials.
		fmt.Fprintf(a.out, "Account created for %s. Please log in.\n", resp.User.Email)
	case "quit":
		return true
	default:
		fmt.Fprintln(a.out, "Unknown command")
	}
	return false
}

func (a *App) dashboardView(ctx context.Context) (done bool) {
	fmt.Fprintln(a.out, "\ncommands: open <file>, classify, gradcam, shap, logout, quit")

	line := a.prompt("> ")
	cmd, arg, _ := strings.Cut(line, " ")

	switch cmd {
	case "open":
		if arg == "" {
			fmt.Fprintln(a.out, "usage: open <file>")
			return false
		}
		a.results.SelectFile(arg)
		fmt.Fprintf(a.out, "Selected %s\n", arg)
	case "classify":
		a.classify(ctx)
	case "gradcam":
		a.gradCAM(ctx)
	case "shap":
		a.shap(ctx)
	case "logout":
		if err := a.client.Logout(ctx, a.session.Email); err != nil {
			fmt.Fprintf(a.out, "Logout failed: %v\n", err)
			return false
		}
		a.results.SelectFile("")
		a.session.End()
		fmt.Fprintln(a.out, "Logout successful")
	case "quit":
		return true
	default:
		fmt.Fprintln(a.out, "Unknown command")
	}
	return false
}

func (a *App) classify(ctx context.Context) {
	if a.results.SelectedFile == "" {
		fmt.Fprintln(a.out, "Please upload an image first")
		return
	}
	if !a.results.BeginOperation() {
		return
	}
	defer a.results.EndOperation()

	preds, err := a.client.Classify(ctx, a.session.Token, a.results.SelectedFile)
	if err != nil {
		a.results.SetError(err.Error())
		fmt.Fprintln(a.out, a.results.Err)
		return
	}
	a.results.SetPredictions(preds)

	if len(preds) == 0 {
		fmt.Fprintln(a.out, "No detections")
		return
	}
	for _, p := range preds {
		fmt.Fprintf(a.out, "%s  quality: %s (%.0f%%)  confidence: %.0f%%\n",
			p.PredictedClass, p.Quality, p.QualityConfidence, p.Confidence)
	}
}

func (a *App) gradCAM(ctx context.Context) {
	if a.results.SelectedFile == "" {
		fmt.Fprintln(a.out, "Please upload an image first")
		return
	}
	if !a.results.BeginOperation() {
		return
	}
	defer a.results.EndOperation()

	data, err := a.client.GradCAM(ctx, a.session.Token, a.results.SelectedFile)
	if err != nil {
		a.results.SetError(err.Error())
		fmt.Fprintln(a.out, a.results.Err)
		return
	}
	handle, err := NewImageHandle(data, "gradcam-*.png")
	if err != nil {
		a.logger.Error("Failed to store Grad-CAM overlay", zap.Error(err))
		a.results.SetError("Grad-CAM failed")
		fmt.Fprintln(a.out, a.results.Err)
		return
	}
	a.results.SetGradCAM(handle)
	fmt.Fprintf(a.out, "Grad-CAM heatmap saved to %s\n", handle.Path())
}

func (a *App) shap(ctx context.Context) {
	if a.results.SelectedFile == "" {
		fmt.Fprintln(a.out, "Please upload an image first")
		return
	}
	if !a.results.BeginSHAP() {
		return
	}
	defer a.results.EndSHAP()

	data, err := a.client.SHAP(ctx, a.session.Token, a.results.SelectedFile)
	if err != nil {
		if errors.Is(err, ErrNetwork) {
			a.results.SetError(ErrNetwork.Error())
		} else {
			a.results.SetError(err.Error())
		}
		fmt.Fprintln(a.out, a.results.Err)
		return
	}
	handle, err := NewImageHandle(data, "shap-*.png")
	if err != nil {
		a.logger.Error("Failed to store SHAP overlay", zap.Error(err))
		a.results.SetError("SHAP generation failed")
		fmt.Fprintln(a.out, a.results.Err)
		return
	}
	a.results.SetSHAP(handle)
	fmt.Fprintf(a.out, "SHAP explanation saved to %s\n", handle.Path())
}

func (a *App) prompt(label string) string {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "quit"
	}
	return strings.TrimSpace(a.in.Text())
}
