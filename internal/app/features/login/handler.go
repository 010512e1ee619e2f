// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	userstore "github.com/dalemusser/tilestock/internal/app/store/users"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/app/system/timeouts"
	"github.com/dalemusser/tilestock/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users         *userstore.Store
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	GoogleEnabled bool
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         users,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Username      string
	ReturnURL     string
	GoogleEnabled bool
}

// ServeLogin handles GET /. Signed-in users go straight to the dashboard.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// HandleLoginPost handles POST /.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form failed", err, "Invalid form data.", "/")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your username and password.", username)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	switch err {
	case nil:
		// found, continue
	case mongo.ErrNoDocuments:
		h.renderFormWithError(w, r, "Invalid username or password.", username)
		return
	default:
		h.ErrLog.LogServerError(w, r, "login user lookup failed", err, "A server error occurred.", "/")
		return
	}

	if !userstore.CheckPassword(u, password) {
		h.Log.Warn("login failed: wrong password", zap.String("username", username))
		h.renderFormWithError(w, r, "Invalid username or password.", username)
		return
	}

	if !u.IsActive {
		h.Log.Warn("login refused: account disabled", zap.String("username", username))
		h.renderFormWithError(w, r, "Your account is disabled. Please contact an administrator.", username)
		return
	}

	err = h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:   u.ID.Hex(),
		Name: u.Username,
		Role: u.Role,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session. Please try again.", "/")
		return
	}

	h.Log.Info("user logged in", zap.String("username", u.Username), zap.String("role", u.Role))

	dest := urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username string) {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		Error:         msg,
		Username:      username,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}
