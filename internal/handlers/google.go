package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/helpmatch/internal/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthSigner defines the interface for OAuth sign-in: an idempotent upsert of
// the user keyed by email, returning a session token.
type OAuthSigner interface {
	OAuthSignIn(ctx context.Context, email, name string) (string, error)
}

// GoogleOAuth is the Google provider configuration, assembled once at startup.
// A nil value means the provider is not configured and its routes are not mounted.
type GoogleOAuth struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// NewGoogleOAuth creates the Google provider configuration.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

// googleUserInfo is the subset of the userinfo payload the service needs.
type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OAuthErrorResponse represents an error response during OAuth sign-in
// swagger:model OAuthErrorResponse
type OAuthErrorResponse struct {
	// Error message
	// default: OAuth sign-in failed
	Error string `json:"error"`
}

// NewGoogleLoginHandler returns an HTTP handler redirecting to Google's consent page.
// @Summary Start Google sign-in
// @Description Redirects to Google's OAuth2 consent page
// @Tags auth
// @Success 307 "Redirect to Google"
// @Router /auth/google [get]
func NewGoogleLoginHandler(oauth *GoogleOAuth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := oauth.Config.AuthCodeURL("state", oauth2.AccessTypeOffline)
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	}
}

// NewGoogleCallbackHandler returns an HTTP handler for the Google OAuth callback.
// It exchanges the code, fetches the user info and upserts the user by email,
// so the first sign-in creates the account and later ones reuse it.
// @Summary Google sign-in callback
// @Description Exchanges the authorization code, upserts the user by email and returns a JWT token
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} handlers.LoginResponse "JWT token returned"
// @Failure 400 {object} handlers.OAuthErrorResponse "Authorization code missing"
// @Failure 500 {object} handlers.OAuthErrorResponse "OAuth exchange failed"
// @Router /auth/google/callback [get]
func NewGoogleCallbackHandler(oauth *GoogleOAuth, svc OAuthSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		code := r.URL.Query().Get("code")
		if code == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(OAuthErrorResponse{
				Error: "Authorization code not found",
			})
			return
		}

		token, err := oauth.Config.Exchange(ctx, code)
		if err != nil {
			logger.Log.Errorw("failed to exchange authorization code", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(OAuthErrorResponse{
				Error: "OAuth sign-in failed",
			})
			return
		}

		resp, err := oauth.Config.Client(ctx, token).Get(oauth.UserInfoURL)
		if err != nil {
			logger.Log.Errorw("failed to fetch user info", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(OAuthErrorResponse{
				Error: "OAuth sign-in failed",
			})
			return
		}
		defer resp.Body.Close()

		var info googleUserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
			logger.Log.Errorw("failed to decode user info", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(OAuthErrorResponse{
				Error: "OAuth sign-in failed",
			})
			return
		}

		jwtToken, err := svc.OAuthSignIn(ctx, info.Email, info.Name)
		if err != nil {
			logger.Log.Errorw("failed to sign in user", "email", info.Email, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(OAuthErrorResponse{
				Error: "OAuth sign-in failed",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(LoginResponse{Token: jwtToken})
	}
}
