// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/session"
	"blogpress/internal/store"
)

// totpIssuer names the site in authenticator apps.
const totpIssuer = "blogpress"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in: nothing to do here.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.TwoFADone {
		http.Redirect(w, r, listURL, http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title:   "Sign In",
		Section: "login",
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := a.userStore.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.loginError(w, r, username, "An unexpected error occurred.")
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, password) {
		slog.Info("login failed", "username", username)
		a.loginError(w, r, username, "Invalid username or password.")
		return
	}

	// Users with TOTP enabled must verify a code before the session counts
	// as signed in.
	needs2FA := user.Needs2FAVerify()
	if err := a.startSession(w, r, user, !needs2FA); err != nil {
		serverError(w, "session create failed", err)
		return
	}

	if needs2FA {
		http.Redirect(w, r, "/accounts/2fa/verify/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, listURL, http.StatusSeeOther)
}

func (a *Auth) loginError(w http.ResponseWriter, r *http.Request, username, msg string) {
	a.renderer.Page(w, r, "login", &render.PageData{
		Title:   "Sign In",
		Section: "login",
		Data:    map[string]any{"Error": msg, "Username": username},
	})
}

// SignupPage renders the registration form.
func (a *Auth) SignupPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, listURL, http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "signup", &render.PageData{
		Title:   "Sign Up",
		Section: "signup",
	})
}

// SignupSubmit registers a member account and signs it in.
func (a *Auth) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	fail := func(msg string) {
		a.renderer.Page(w, r, "signup", &render.PageData{
			Title:   "Sign Up",
			Section: "signup",
			Data:    map[string]any{"Error": msg, "Username": username, "Email": email},
		})
	}

	if errMsg := validateSignup(username, password, r.FormValue("password2")); errMsg != "" {
		fail(errMsg)
		return
	}

	user, err := a.userStore.Create(username, email, password, "", models.RoleMember)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail("That username is already taken.")
			return
		}
		slog.Error("signup failed", "error", err)
		fail("An unexpected error occurred.")
		return
	}
	slog.Info("user signed up", "username", user.Username)

	if err := a.startSession(w, r, user, true); err != nil {
		serverError(w, "session create failed", err)
		return
	}
	http.Redirect(w, r, listURL, http.StatusSeeOther)
}

func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User, twoFADone bool) error {
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   twoFADone,
	})
	return err
}

// TwoFASetupPage generates a TOTP secret and displays the QR code. Users
// who already enabled TOTP just see its status.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/accounts/login/", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		serverError(w, "user lookup for 2fa failed", err)
		return
	}
	if user.TOTPEnabled {
		a.renderer.Page(w, r, "2fa_setup", &render.PageData{
			Title:   "Two-Factor Authentication",
			Section: "2fa",
			Data:    map[string]any{"Enabled": true},
		})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Username,
	})
	if err != nil {
		serverError(w, "totp generate failed", err)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		serverError(w, "save totp secret failed", err)
		return
	}

	qr, err := qrDataURI(key.URL())
	if err != nil {
		serverError(w, "qr code generation failed", err)
		return
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title:   "Set Up Two-Factor Authentication",
		Section: "2fa",
		Data: map[string]any{
			"QRCode": qr,
			"Secret": key.Secret(),
		},
	})
}

// TwoFAVerifyPage renders the 2FA code entry form.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) == nil {
		http.Redirect(w, r, "/accounts/login/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
	})
}

// TwoFAVerifySubmit validates a TOTP code. During setup it enables TOTP
// for the account; during login it completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/accounts/login/", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		serverError(w, "user lookup for 2fa failed", err)
		return
	}

	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/accounts/2fa/setup/", http.StatusSeeOther)
		return
	}

	// A setup confirmation requires a fully signed-in session; otherwise
	// anyone holding a half-open session could bind a new authenticator.
	setup := !user.TOTPEnabled
	if setup && !sess.TwoFADone {
		http.Redirect(w, r, "/accounts/login/", http.StatusSeeOther)
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	if !totp.Validate(code, *user.TOTPSecret) {
		if setup {
			a.renderSetupRetry(w, r, user)
			return
		}
		a.renderer.Page(w, r, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	if setup {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			serverError(w, "enable totp failed", err)
			return
		}
		slog.Info("totp enabled", "username", user.Username)
		http.Redirect(w, r, "/accounts/2fa/setup/", http.StatusSeeOther)
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		serverError(w, "session update failed", err)
		return
	}

	http.Redirect(w, r, listURL, http.StatusSeeOther)
}

// renderSetupRetry shows the setup page again, with the pending secret,
// after a wrong confirmation code.
func (a *Auth) renderSetupRetry(w http.ResponseWriter, r *http.Request, user *models.User) {
	key, err := otp.NewKeyFromURL(totpURL(user.Username, *user.TOTPSecret))
	if err != nil {
		serverError(w, "rebuild totp key failed", err)
		return
	}
	qr, err := qrDataURI(key.URL())
	if err != nil {
		serverError(w, "qr code generation failed", err)
		return
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title:   "Set Up Two-Factor Authentication",
		Section: "2fa",
		Data: map[string]any{
			"Error":  "Invalid code. Please try again.",
			"QRCode": qr,
			"Secret": key.Secret(),
		},
	})
}

// Logout destroys the session and returns to the post listing.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, listURL, http.StatusSeeOther)
}

// totpURL builds the otpauth URL for a stored secret.
func totpURL(account, secret string) string {
	q := url.Values{"secret": {secret}, "issuer": {totpIssuer}}
	return "otpauth://totp/" + url.PathEscape(totpIssuer+":"+account) + "?" + q.Encode()
}

// qrDataURI encodes content as a PNG QR code data URI.
func qrDataURI(content string) (template.URL, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}
