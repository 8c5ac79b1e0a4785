package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// Scopes defines the OAuth scopes required to read job alert mail
var Scopes = []string{
	gmail.GmailReadonlyScope,
}

const (
	callbackAddr = "localhost:8080"
	authTimeout  = 5 * time.Minute
)

// loadCredentials loads OAuth config from credentials file
func loadCredentials(credPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w\n\nTo set up Gmail API:\n1. Go to https://console.cloud.google.com/\n2. Create a project and enable Gmail API\n3. Create OAuth 2.0 credentials (Desktop app)\n4. Download and save to: %s", err, credPath)
	}

	config, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return config, nil
}

// loadToken loads a saved OAuth token
func loadToken(tokenPath string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, err
	}

	return token, nil
}

// saveToken saves an OAuth token to file
func saveToken(tokenPath string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(tokenPath), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath, data, 0600)
}

// getTokenFromWeb performs the OAuth flow via browser
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	state := uuid.NewString()

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			errChan <- fmt.Errorf("invalid state parameter")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errChan <- fmt.Errorf("no code in callback")
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>jobscout is authorized</h1><p>You can close this window.</p></body></html>`)
		codeChan <- code
	})

	server := &http.Server{Addr: callbackAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	config.RedirectURL = "http://" + callbackAddr + "/callback"
	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintln(out, "Opening browser for Google authentication...")
	fmt.Fprintln(out, "If the browser doesn't open, visit this URL:")
	fmt.Fprintln(out, authURL)
	fmt.Fprintln(out)

	openBrowser(authURL)

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authentication timeout")
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	return token, nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}

// getClient returns an authenticated HTTP client, running the browser flow
// when no token is stored yet
func getClient(ctx context.Context, config *oauth2.Config, tokenPath string, out io.Writer) (*http.Client, error) {
	token, err := loadToken(tokenPath)
	if err != nil {
		token, err = getTokenFromWeb(ctx, config, out)
		if err != nil {
			return nil, err
		}

		if err := saveToken(tokenPath, token); err != nil {
			return nil, fmt.Errorf("failed to save token: %w", err)
		}
	}

	// Token source will auto-refresh expired tokens
	tokenSource := config.TokenSource(ctx, token)

	newToken, err := tokenSource.Token()
	if err == nil && newToken.AccessToken != token.AccessToken {
		_ = saveToken(tokenPath, newToken)
	}

	return oauth2.NewClient(ctx, tokenSource), nil
}
