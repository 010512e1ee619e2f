// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/tilestock/internal/app/features/errors"
	userstore "github.com/dalemusser/tilestock/internal/app/store/users"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/app/system/authz"
	"github.com/dalemusser/tilestock/internal/app/system/flash"
	"github.com/dalemusser/tilestock/internal/app/system/htmlsanitize"
	"github.com/dalemusser/tilestock/internal/app/system/timeouts"
	"github.com/dalemusser/tilestock/internal/app/system/viewdata"
	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type listData struct {
	viewdata.BaseVM
	Users      []models.User
	CurrentHex string
}

type userFormData struct {
	viewdata.BaseVM
	Error    string
	User     models.User
	IsEdit   bool
	ActionTo string
}

// ServeList handles GET /admin/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list users failed", err, "Could not load users.", "/dashboard")
		return
	}

	_, _, currentID, _ := authz.UserCtx(r)

	vm := viewdata.NewBaseVM(r, "Users", "/dashboard")
	vm.Flashes = flash.Pop(h.SessionMgr, w, r)

	templates.Render(w, r, "user_list", listData{
		BaseVM:     vm,
		Users:      users,
		CurrentHex: currentID.Hex(),
	})
}

// ServeNew handles GET /admin/users/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "user_form", userFormData{
		BaseVM:   viewdata.NewBaseVM(r, "Add User", "/admin/users"),
		User:     models.User{Role: models.RoleStaff},
		ActionTo: "/admin/users/new",
	})
}

// HandleCreate handles POST /admin/users/new.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse user form failed", err, "Invalid form data.", "/admin/users")
		return
	}

	u := models.User{
		Username: htmlsanitize.Text(r.FormValue("username")),
		Email:    htmlsanitize.Text(r.FormValue("email")),
		Role:     strings.TrimSpace(r.FormValue("role")),
		IsActive: true,
	}
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if password != confirm {
		h.renderForm(w, r, "Add User", "Passwords do not match.", u, false, "/admin/users/new")
		return
	}

	_, _, currentID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u.CreatedBy = &currentID
	created, err := h.Users.Create(ctx, u, password)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			msg = "That username is already taken."
		}
		h.renderForm(w, r, "Add User", msg, u, false, "/admin/users/new")
		return
	}

	h.Log.Info("user created",
		zap.String("user_id", created.ID.Hex()),
		zap.String("username", created.Username),
		zap.String("role", created.Role),
		zap.String("created_by", currentID.Hex()))
	flash.Add(h.SessionMgr, w, r, "User "+created.Username+" added.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// ServeEdit handles GET /admin/users/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid user.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.LogNotFound(w, r, "user not found", err, "That user does not exist.", "/admin/users")
			return
		}
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Could not load the user.", "/admin/users")
		return
	}

	h.renderForm(w, r, "Edit User", "", *u, true, "/admin/users/"+id.Hex()+"/edit")
}

// HandleEdit handles POST /admin/users/{id}/edit. The password fields are
// optional; blank means keep the current password.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid user.", "/admin/users")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse user form failed", err, "Invalid form data.", "/admin/users")
		return
	}

	upd := userstore.Update{
		Email: htmlsanitize.Text(r.FormValue("email")),
		Role:  strings.TrimSpace(r.FormValue("role")),
	}
	action := "/admin/users/" + id.Hex() + "/edit"

	formUser := models.User{ID: id, Email: upd.Email, Role: upd.Role}

	// Admins cannot change their own role; locking yourself out of user
	// management is unrecoverable without DB surgery.
	_, _, currentID, _ := authz.UserCtx(r)
	if id == currentID && upd.Role != models.RoleAdmin {
		h.renderForm(w, r, "Edit User", "You cannot change your own role.", formUser, true, action)
		return
	}

	if password := r.FormValue("password"); password != "" {
		if password != r.FormValue("confirm_password") {
			h.renderForm(w, r, "Edit User", "Passwords do not match.", formUser, true, action)
			return
		}
		upd.Password = &password
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Update(ctx, id, upd); err != nil {
		h.renderForm(w, r, "Edit User", err.Error(), formUser, true, action)
		return
	}

	h.Log.Info("user updated", zap.String("user_id", id.Hex()))
	flash.Add(h.SessionMgr, w, r, "User updated.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleToggle handles POST /admin/users/{id}/toggle and flips the
// active flag. Admins cannot deactivate themselves.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid user.", "/admin/users")
		return
	}

	_, _, currentID, _ := authz.UserCtx(r)
	if id == currentID {
		flash.Add(h.SessionMgr, w, r, "You cannot deactivate your own account.")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.ErrLog.LogNotFound(w, r, "user not found for toggle", err, "That user does not exist.", "/admin/users")
			return
		}
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Could not load the user.", "/admin/users")
		return
	}

	if err := h.Users.SetActive(ctx, id, !u.IsActive); err != nil {
		h.ErrLog.LogServerError(w, r, "toggle user failed", err, "Could not update the user.", "/admin/users")
		return
	}

	h.Log.Info("user active flag toggled",
		zap.String("user_id", id.Hex()),
		zap.Bool("is_active", !u.IsActive))
	flash.Add(h.SessionMgr, w, r, "User "+u.Username+" updated.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleDelete handles POST /admin/users/{id}/delete. Admins cannot delete
// themselves.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Invalid user.", "/admin/users")
		return
	}

	_, _, currentID, _ := authz.UserCtx(r)
	if id == currentID {
		flash.Add(h.SessionMgr, w, r, "You cannot delete your own account.")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Users.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete user failed", err, "Could not delete the user.", "/admin/users")
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "user not found for delete", nil, "That user does not exist.", "/admin/users")
		return
	}

	h.Log.Info("user deleted", zap.String("user_id", id.Hex()))
	flash.Add(h.SessionMgr, w, r, "User deleted.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, title, errMsg string, u models.User, isEdit bool, action string) {
	templates.Render(w, r, "user_form", userFormData{
		BaseVM:   viewdata.NewBaseVM(r, title, "/admin/users"),
		Error:    errMsg,
		User:     u,
		IsEdit:   isEdit,
		ActionTo: action,
	})
}
