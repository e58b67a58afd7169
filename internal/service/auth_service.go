package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

type AuthService interface {
	AuthURL(state string) string
	LoginCallback(ctx context.Context, code string) (int64, error)
}

type authService struct {
	cfg         config.Config
	oauth       *oauth2.Config
	u           repository.UserRepository
	userInfoURL string
}

// NewLoginOAuthConfig is the OAuth client used for admin sign-in.
func NewLoginOAuthConfig(cfg config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.LoginRedirectURI,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func NewAuthService(cfg config.Config, oauthCfg *oauth2.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg:         cfg,
		oauth:       oauthCfg,
		u:           u,
		userInfoURL: googleUserInfoURL,
	}
}

func (s *authService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// LoginCallback signs in a Google account listed in the admin allow-list and
// returns its user id, creating the user on first sign-in.
func (s *authService) LoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		return 0, invalid("authorization code is empty")
	}
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" || s.oauth.RedirectURL == "" {
		slog.Info("OAuth2 configuration is incomplete")
		return 0, ErrNotConfigured
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userInfo, err := s.userInfo(s.oauth.Client(ctx, token))
	if err != nil {
		return 0, err
	}

	email := strings.ToLower(userInfo.Email)
	if !userInfo.VerifiedEmail || !slices.Contains(s.cfg.AdminEmails, email) {
		slog.Warn("sign-in rejected", "email", email)
		return 0, ErrForbidden
	}

	user, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	if user == nil {
		return s.u.Create(ctx, &models.User{
			GoogleID:       userInfo.ID,
			Email:          email,
			Name:           userInfo.Name,
			ProfilePicture: userInfo.Picture,
		})
	}

	user.GoogleID = userInfo.ID
	user.Name = userInfo.Name
	user.ProfilePicture = userInfo.Picture
	if err := s.u.Update(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (s *authService) userInfo(client *http.Client) (*transfer.GoogleUserInfo, error) {
	response, err := client.Get(s.userInfoURL)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error fetching user info: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	var userInfo transfer.GoogleUserInfo
	if err := json.NewDecoder(response.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error decoding user info: %w", err)
	}
	return &userInfo, nil
}
