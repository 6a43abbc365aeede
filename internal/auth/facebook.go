package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const urlProfile = "https://graph.facebook.com/me?fields=name,email"

// Facebook signs players in with the OAuth code flow and reads name and email from the Graph API.
type Facebook struct {
	oauthConfig *oauth2.Config
	profileURL  string
}

type FacebookOption func(*Facebook)

// WithEndpoint points the provider at another OAuth server.
func WithEndpoint(endpoint oauth2.Endpoint) FacebookOption {
	return func(f *Facebook) { f.oauthConfig.Endpoint = endpoint }
}

// WithProfileURL points the provider at another profile endpoint.
func WithProfileURL(url string) FacebookOption {
	return func(f *Facebook) { f.profileURL = url }
}

func NewFacebook(conf config.FacebookOAuth, opts ...FacebookOption) *Facebook {
	provider := &Facebook{
		oauthConfig: &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,

			RedirectURL: conf.RedirectURL,

			Scopes:   conf.Scopes,
			Endpoint: facebook.Endpoint,
		},
		profileURL: urlProfile,
	}

	for _, opt := range opts {
		opt(provider)
	}

	return provider
}

// AuthCodeURL is the consent page the browser is redirected to.
func (that *Facebook) AuthCodeURL(state string) string {
	return that.oauthConfig.AuthCodeURL(state)
}

// Identify exchanges the callback code for a token and fetches the profile.
func (that *Facebook) Identify(ctx context.Context, code string) (*entity.Player, error) {
	if code == "" {
		return nil, apperror.ErrMissingOAuthCode
	}

	token, err := that.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	client := that.oauthConfig.Client(ctx, token)

	player, err := that.getProfile(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return player, nil
}

func (that *Facebook) getProfile(ctx context.Context, client *http.Client) (*entity.Player, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.profileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var profile entity.Player
	if err = json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	if profile.IsZero() {
		return nil, apperror.ErrIncompleteIdentity
	}

	return &profile, nil
}
