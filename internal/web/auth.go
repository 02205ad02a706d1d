package web

import (
	"errors"
	"net/http"

	"github.com/innofeed/innofeed/internal/apiclient"
	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/session"
	"github.com/innofeed/innofeed/internal/validation"
)

// MsgRegistered is shown after a successful registration.
const MsgRegistered = "Registration successful! Please log in."

// authView is the Auth screen. Exactly one of Message and Error is set at a
// time, and switching modes clears both.
type authView struct {
	IsLogin bool
	Name    string
	Email   string
	Message string
	Error   string
}

type loginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// AuthPage renders the Auth screen in login mode, or sends signed-in users
// to their feed.
//
// GET /
func (h *Handler) AuthPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) != nil {
		redirect(w, r, "/feed")
		return
	}
	h.renderPage(w, r, http.StatusOK, "auth", authView{IsLogin: true})
}

// RegisterPage renders the Auth screen in register mode.
//
// GET /register
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) != nil {
		redirect(w, r, "/feed")
		return
	}
	h.renderPage(w, r, http.StatusOK, "auth", authView{IsLogin: false})
}

// Login authenticates against the backend, starts a session, mounts the
// Feed screen and redirects to it. A session the browser already had is
// ended first.
//
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, r, http.StatusBadRequest, "auth", authView{IsLogin: true, Error: "Invalid form submission."})
		return
	}
	form := loginForm{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}
	view := authView{IsLogin: true, Email: form.Email}

	if err := h.validator.Validate(form); err != nil {
		view.Error = formError(err)
		h.renderPage(w, r, http.StatusUnprocessableEntity, "auth", view)
		return
	}

	identity, err := h.auth.Login(r.Context(), apiclient.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		h.metrics.IncLogin(metrics.StatusFailed)
		view.Error = apiclient.Message(err)
		h.renderPage(w, r, http.StatusOK, "auth", view)
		return
	}
	h.metrics.IncLogin(metrics.StatusSuccess)

	if old := session.FromContext(r.Context()); old != nil {
		h.pages.Unmount(old.ID)
		h.sessions.Discard(r.Context(), old.ID)
	}

	s, err := h.sessions.Start(r.Context(), w, identity)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to start session", "error", err)
		view.Error = "Could not start a session. Please try again."
		h.renderPage(w, r, http.StatusInternalServerError, "auth", view)
		return
	}

	h.pages.Mount(pageContext(r), s.ID, identity)
	redirect(w, r, "/feed")
}

// Register creates an account and switches to login mode.
//
// POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, r, http.StatusBadRequest, "auth", authView{Error: "Invalid form submission."})
		return
	}
	form := registerForm{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	view := authView{IsLogin: false, Name: form.Name, Email: form.Email}

	if err := h.validator.Validate(form); err != nil {
		view.Error = formError(err)
		h.renderPage(w, r, http.StatusUnprocessableEntity, "auth", view)
		return
	}

	_, err := h.auth.Register(r.Context(), apiclient.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.metrics.IncRegister(metrics.StatusFailed)
		view.Error = apiclient.Message(err)
		h.renderPage(w, r, http.StatusOK, "auth", view)
		return
	}
	h.metrics.IncRegister(metrics.StatusSuccess)

	h.renderPage(w, r, http.StatusOK, "auth", authView{IsLogin: true, Message: MsgRegistered})
}

// Logout ends the session and unmounts its Feed screen.
//
// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := h.sessions.End(w, r); id != "" {
		h.pages.Unmount(id)
	}
	redirect(w, r, "/")
}

func formError(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return "Please fill in all required fields: " + verr.Error() + "."
	}
	return err.Error()
}
