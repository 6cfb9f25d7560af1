package handler

import (
	"html/template"
	"net/http"

	"github.com/userhubapp/userhub/pkg/session"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>{{.Title}}</title>
</head>
<body>
	{{range .Flashes}}<p class="flash flash-{{.Severity}}">{{.Message}}</p>
	{{end}}
	{{if eq .Page "landing"}}
	<h1>Welcome{{with .Username}}, {{.}}{{end}}</h1>
	{{if .Authenticated}}
	<form method="post" action="/signout"><button type="submit">Sign out</button></form>
	{{else}}
	<p><a href="/signin">Sign in</a> or <a href="/signup">create an account</a></p>
	{{end}}
	{{else if eq .Page "signup"}}
	<h1>Create account</h1>
	<form method="post" action="/signup">
		<label>Username <input type="text" name="username" value="{{.Username}}"></label>
		<label>Email <input type="email" name="email" value="{{.Email}}"></label>
		<label>Password <input type="password" name="password"></label>
		<label>Confirm password <input type="password" name="password2"></label>
		<button type="submit">Sign up</button>
	</form>
	<p>Already registered? <a href="/signin">Sign in</a></p>
	{{else if eq .Page "signin"}}
	<h1>Sign in</h1>
	<form method="post" action="/signin">
		<label>Username <input type="text" name="username" value="{{.Username}}"></label>
		<label>Password <input type="password" name="password"></label>
		<button type="submit">Sign in</button>
	</form>
	{{if .GoogleOAuth}}<p><a href="/oauth/google">Sign in with Google</a></p>{{end}}
	<p>New here? <a href="/signup">Create an account</a></p>
	{{end}}
</body>
</html>
`))

type pageData struct {
	Page          string
	Title         string
	Flashes       []Flash
	Username      string
	Email         string
	Authenticated bool
	GoogleOAuth   bool
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "error", err, "page", data.Page)
	}
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Page:    "landing",
		Title:   "Home",
		Flashes: h.popFlashes(w, r),
	}

	if sess, ok := session.FromContext(r.Context()); ok && sess.IsAuthenticated() {
		data.Authenticated = true
		if u, err := h.users.GetByID(r.Context(), *sess.UserID); err == nil {
			data.Username = u.Username
		}
	}

	h.renderPage(w, r, data)
}

func (h *Handler) signupPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, pageData{
		Page:    "signup",
		Title:   "Sign up",
		Flashes: h.popFlashes(w, r),
	})
}

func (h *Handler) signinPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, pageData{
		Page:        "signin",
		Title:       "Sign in",
		Flashes:     h.popFlashes(w, r),
		GoogleOAuth: h.oauth != nil,
	})
}
