package google

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jivetime/jivetime/internal/config"
	"github.com/jivetime/jivetime/internal/rest"
	"github.com/jivetime/jivetime/pkg/group"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type GoogleAuth struct {
	repo        Repository
	oauthConfig *oauth2.Config
}

func NewGoogleAuth(repo Repository, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{gcal.CalendarEventsScope, gcal.CalendarReadonlyScope},
	}

	return &GoogleAuth{repo: repo, oauthConfig: oauthConfig}
}

// OAuthLogin starts the authorization of the current group and returns the Google consent URL.
// The state carries the finalUrl the callback redirects to.
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	groupId, err := group.CurrentId(r.Context())
	if err != nil {
		log.Error("unable to retrieve current group: ", err)
		http.Error(w, "unable to retrieve current group", http.StatusInternalServerError)
		return
	}

	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")

	if err := g.repo.StoreNonce(r.Context(), groupId, stateNonce); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	rest.WriteJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")

	finalUrl, nonce, ok := strings.Cut(state, "|")
	if !ok || nonce == "" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid authorization state", "")
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	groupId, err := g.repo.StoreToken(r.Context(), nonce, token)
	if err != nil {
		if errors.Is(err, ErrUnknownState) {
			log.Warnf("Google auth callback with unknown nonce: %s", nonce)
		}
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debugf("Successfully stored Google auth token for group %d", groupId)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	groupId, err := group.CurrentId(r.Context())
	if err != nil {
		log.Error("unable to retrieve current group: ", err)
		http.Error(w, "unable to retrieve current group", http.StatusInternalServerError)
		return
	}
	if err := g.repo.Delete(r.Context(), groupId); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CalendarClient returns a Calendar API client authorized for the group.
// Returns ErrUnauthenticated when the group has no token.
func (g *GoogleAuth) CalendarClient(ctx context.Context, groupId int) (CalendarClient, error) {
	token, err := g.repo.GetToken(ctx, groupId)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		log.Debugf("group %d is unauthenticated, authentication is required", groupId)
		return nil, ErrUnauthenticated
	}
	client := g.oauthConfig.Client(context.Background(), token)
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		log.Errorf("unable to retrieve Calendar client: %v", err)
		return nil, err
	}
	return &calendarClient{service: service}, nil
}
