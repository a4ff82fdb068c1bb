// internal/handlers/user_handlers.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/service"
)

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Resolve(w, r)
	h.render(w, http.StatusOK, "login.html", &pageData{
		Title:   "Login",
		Flashes: sess.PopFlashes(),
		User:    sess.Identity(),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Resolve(w, r)

	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", &pageData{
			Title: "Login",
			Error: "Both fields are required.",
		})
		return
	}

	name := r.PostFormValue("name")
	password := r.PostFormValue("password")
	if name == "" || password == "" {
		h.render(w, http.StatusOK, "login.html", &pageData{
			Title: "Login",
			Error: "Both fields are required.",
			Form:  formData{Name: name},
		})
		return
	}

	user, err := h.auth.Authenticate(r.Context(), name, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(w, http.StatusOK, "login.html", &pageData{
				Title: "Login",
				Error: "Invalid credentials.  Please try again.",
				Form:  formData{Name: name},
			})
			return
		}
		// Anything else (e.g. a malformed stored digest) is a server fault.
		logger.Error("Authenticate failed", err)
		h.writeServerError(w)
		return
	}

	h.sessions.Login(w, sess, user)
	sess.Flash(fmt.Sprintf("Welcome, %s", user.Name))
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Resolve(w, r)
	h.render(w, http.StatusOK, "register.html", &pageData{
		Title:   "Register",
		Flashes: sess.PopFlashes(),
		User:    sess.Identity(),
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Resolve(w, r)

	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "register.html", &pageData{
			Title: "Register",
			Error: "This field is required.",
		})
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	form := formData{Name: name, Email: email}

	user, err := h.auth.Register(r.Context(), name, email,
		r.PostFormValue("password"), r.PostFormValue("confirm"))
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.render(w, http.StatusOK, "register.html", &pageData{
				Title: "Register",
				Error: vErr.Reason,
				Form:  form,
			})
		case errors.Is(err, service.ErrUserExists):
			h.render(w, http.StatusOK, "register.html", &pageData{
				Title: "Register",
				Error: "That username and/or email already exists.",
				Form:  form,
			})
		default:
			logger.Error("Register failed", err)
			h.writeServerError(w)
		}
		return
	}

	sess.Flash(fmt.Sprintf("Thanks for registering, %s", user.Name))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	h.sessions.Logout(sess)
	sess.Flash("Peace!")
	http.Redirect(w, r, "/", http.StatusFound)
}
