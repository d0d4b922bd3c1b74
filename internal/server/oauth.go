package server

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"github.com/nativeJustin/calendar-app/internal/errdefs"
	"github.com/nativeJustin/calendar-app/internal/logging"
)

const callbackSuccessPage = `<html>
  <body>
    <h2>Google Calendar Connected Successfully!</h2>
    <p>Account: %s</p>
    <p>You can close this window and return to the app.</p>
    <script>
      setTimeout(() => { window.close() }, 2000)
    </script>
  </body>
</html>`

const callbackFailurePage = `<html>
  <body>
    <h2>Authentication Failed</h2>
    <p>Error: %s</p>
    <p>You can close this window and try again.</p>
  </body>
</html>`

// handleGoogleAuth issues an anti-forgery state token and redirects to
// the provider's consent screen.
func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	if !s.google.IsConfigured() {
		writeError(w, "Failed to initiate authentication",
			&errdefs.NotConfiguredError{Service: "google"})
		return
	}

	state := s.states.Issue()
	http.Redirect(w, r, s.google.AuthCodeURL(state), http.StatusFound)
}

// handleGoogleCallback exchanges the authorization code, resolves the
// account's email, and stores the credential under a fresh account id.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" || state == "" {
		writeCallbackFailure(w, http.StatusBadRequest, "Missing code or state parameter")
		return
	}
	if !s.states.Consume(state) {
		writeCallbackFailure(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}

	ctx := r.Context()

	cred, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("oauth exchange failed", logging.Err(err))
		s.metrics.RecordOAuthAuth(ctx, "failure")
		writeCallbackFailure(w, httpStatusFor(err), err.Error())
		return
	}

	email, err := s.google.ResolveIdentity(ctx, cred)
	if err != nil {
		s.logger.Error("identity resolution failed", logging.Err(err))
		s.metrics.RecordOAuthAuth(ctx, "failure")
		writeCallbackFailure(w, httpStatusFor(err), err.Error())
		return
	}

	accountID := uuid.NewString()
	if err := s.store.Save(accountID, cred, email); err != nil {
		s.logger.Error("failed to store credential", logging.Err(err))
		s.metrics.RecordOAuthAuth(ctx, "failure")
		writeCallbackFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("connected account",
		logging.Account(accountID),
		logging.UserHash(email))
	s.metrics.RecordOAuthAuth(ctx, "success")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, callbackSuccessPage, template.HTMLEscapeString(email))
}

func writeCallbackFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, callbackFailurePage, template.HTMLEscapeString(message))
}

// handleListAccounts returns connected accounts with secrets redacted.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.List()
	if err != nil {
		writeError(w, "Failed to fetch accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// handleRemoveAccount removes a stored credential and drops any cached
// token source for the account.
func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.Remove(id); err != nil {
		writeError(w, "Failed to remove account", err)
		return
	}
	s.calendars.InvalidateAccount(id)

	s.logger.Info("removed account", logging.Account(id))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
