package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/creachadair/atomicfile"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// NewService authenticates against the YouTube Data API. A cached token is
// read from tokenFile when present; otherwise the user is walked through the
// OAuth consent flow and the resulting token is saved for next time.
func NewService(ctx context.Context, clientSecretFile, tokenFile string) (*yt.Service, error) {
	secret, err := os.ReadFile(clientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	conf, err := google.ConfigFromJSON(secret, yt.YoutubeForceSslScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}

	token, err := tokenFromFile(tokenFile)
	if err != nil {
		slog.Info("no cached token, starting consent flow", "token_file", tokenFile)
		token, err = tokenFromWeb(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, token); err != nil {
			slog.Warn("could not cache token", "error", err)
		}
	}

	// TokenSource refreshes expired tokens transparently.
	return yt.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, token)))
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}

func tokenFromWeb(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, then paste the authorization code:\n%s\n> ", url)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return atomicfile.WriteData(path, data, 0600)
}
