package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/tokenstore"
)

// Scopes requested for every account: calendar read/write plus the
// email identity used for the organizer permission check.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Config holds the OAuth client registration for the Google Calendar
// provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// IsConfigured reports whether an OAuth client registration is present.
func (c Config) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// OAuth2 returns the oauth2 configuration for this client.
func (c Config) OAuth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}
}

// AuthCodeURL builds the provider authorization URL embedding the
// anti-forgery state token. Offline access and forced consent are both
// required: without prompt=consent Google omits the refresh token for
// a user who already consented once.
func (c Config) AuthCodeURL(state string) string {
	return c.OAuth2().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange performs the one-time exchange of an authorization code for
// a credential set.
func (c Config) Exchange(ctx context.Context, code string) (tokenstore.Credential, error) {
	token, err := c.OAuth2().Exchange(ctx, code)
	if err != nil {
		return tokenstore.Credential{}, &errdefs.AuthExchangeError{Err: err}
	}
	return tokenstore.FromToken(token), nil
}

// TokenSource returns an auto-refreshing token source for the
// credential. The source serializes its own refreshes.
func (c Config) TokenSource(ctx context.Context, cred tokenstore.Credential) oauth2.TokenSource {
	return c.OAuth2().TokenSource(ctx, cred.Token())
}

// ResolveIdentity returns the email address of the account behind the
// credential.
func (c Config) ResolveIdentity(ctx context.Context, cred tokenstore.Credential) (string, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(c.TokenSource(ctx, cred)))
	if err != nil {
		return "", fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", &errdefs.ProviderRequestError{Provider: "google userinfo", Err: err}
	}
	return info.Email, nil
}
