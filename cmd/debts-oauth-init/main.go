// Command debts-oauth-init authorizes the Sheets ledger backend with a
// personal Google account and stores the resulting token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"

	"debts/internal/cli"
	applog "debts/internal/log"
	gsheet "debts/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(nil).WithComponent(applog.ComponentSheets)

	// The OAuth client must list this URI among its authorized redirect URIs.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}
	cfg, err := gsheet.OAuthConfigFromEnv("http://localhost:" + redirectPort + "/callback")
	if err != nil {
		logger.Error("Cannot load OAuth client", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	code, err := awaitCode(ctx, ":"+redirectPort, cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))
	if err != nil {
		logger.Error("Authorization failed", applog.FieldError, err)
		os.Exit(1)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		logger.Error("Token exchange failed", applog.FieldError, err)
		os.Exit(1)
	}
	out := gsheet.TokenFile()
	if err := gsheet.SaveToken(out, tok); err != nil {
		logger.Error("Cannot save token", applog.FieldError, err, applog.FieldPath, out)
		os.Exit(1)
	}
	fmt.Printf("Saved token to %s\n", out)
}

// awaitCode serves the redirect endpoint until Google calls back with an
// authorization code or ctx ends.
func awaitCode(ctx context.Context, addr, authURL string) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			select {
			case results <- result{err: fmt.Errorf("oauth error: %s", errStr)}:
			default:
			}
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case results <- result{code: r.URL.Query().Get("code")}:
		default:
		}
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- result{err: err}:
			default:
			}
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", authURL)

	select {
	case r := <-results:
		return r.code, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("authorization: %w", ctx.Err())
	}
}
