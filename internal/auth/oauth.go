package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// Provider names accepted on the delegated-login routes.
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// ExternalIdentity is the subset of a provider's user info needed to provision
// a local account.
type ExternalIdentity struct {
	Provider string
	Username string
	Email    string
	Name     string
}

// OAuthProvider wraps an oauth2 config together with the provider-specific
// identity lookup.
type OAuthProvider struct {
	name     string
	config   *oauth2.Config
	identity func(ctx context.Context, client *http.Client) (*ExternalIdentity, error)
}

// AuthURL returns the provider consent URL for the given state nonce.
func (p *OAuthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange converts an authorization code into a token.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

// Identity fetches the authenticated identity from the provider.
func (p *OAuthProvider) Identity(ctx context.Context, token *oauth2.Token) (*ExternalIdentity, error) {
	return p.identity(ctx, p.config.Client(ctx, token))
}

// OAuthRegistry holds the configured delegated-login providers.
type OAuthRegistry struct {
	providers map[string]*OAuthProvider
}

// OAuthCredentials carries the client id/secret pairs from configuration.
type OAuthCredentials struct {
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	RedirectBase       string
}

// NewOAuthRegistry builds the registry. Providers without credentials are left
// unregistered and return an error on lookup.
func NewOAuthRegistry(creds OAuthCredentials) *OAuthRegistry {
	r := &OAuthRegistry{providers: make(map[string]*OAuthProvider)}

	if creds.GitHubClientID != "" {
		r.providers[ProviderGitHub] = &OAuthProvider{
			name: ProviderGitHub,
			config: &oauth2.Config{
				ClientID:     creds.GitHubClientID,
				ClientSecret: creds.GitHubClientSecret,
				Endpoint:     github.Endpoint,
				RedirectURL:  creds.RedirectBase + "/api/auth/oauth/github/callback",
				Scopes:       []string{"read:user", "user:email"},
			},
			identity: fetchGitHubIdentity,
		}
	}

	if creds.GoogleClientID != "" {
		r.providers[ProviderGoogle] = &OAuthProvider{
			name: ProviderGoogle,
			config: &oauth2.Config{
				ClientID:     creds.GoogleClientID,
				ClientSecret: creds.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  creds.RedirectBase + "/api/auth/oauth/google/callback",
				Scopes: []string{
					"https://www.googleapis.com/auth/userinfo.email",
					"https://www.googleapis.com/auth/userinfo.profile",
				},
			},
			identity: fetchGoogleIdentity,
		}
	}

	return r
}

// Provider looks up a configured provider by name.
func (r *OAuthRegistry) Provider(name string) (*OAuthProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("oauth provider %q is not configured", name)
	}
	return p, nil
}

func fetchGitHubIdentity(ctx context.Context, client *http.Client) (*ExternalIdentity, error) {
	var user struct {
		Login string `json:"login"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, "https://api.github.com/user", &user); err != nil {
		return nil, fmt.Errorf("fetch github user: %w", err)
	}

	email := user.Email
	if email == "" {
		// The profile email is often private; the emails endpoint lists the
		// verified primary one.
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err != nil {
			return nil, fmt.Errorf("fetch github emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, fmt.Errorf("github account has no verified email")
	}

	return &ExternalIdentity{
		Provider: ProviderGitHub,
		Username: user.Login,
		Email:    email,
		Name:     user.Name,
	}, nil
}

func fetchGoogleIdentity(ctx context.Context, client *http.Client) (*ExternalIdentity, error) {
	var user struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &user); err != nil {
		return nil, fmt.Errorf("fetch google userinfo: %w", err)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("google account has no email")
	}

	username := user.Email
	if at := strings.IndexByte(username, '@'); at > 0 {
		username = username[:at]
	}

	return &ExternalIdentity{
		Provider: ProviderGoogle,
		Username: username,
		Email:    user.Email,
		Name:     user.Name,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
