package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/metrics"
	"github.com/chris-code08/Day-71-blog-for-deployment/pkg"
)

type usersRepo interface {
	Add(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	All(ctx context.Context) ([]*User, error)
}

type loginSessions interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	repo           usersRepo
	sessions       loginSessions
	renderer       *render.Renderer
	metricsManager *metrics.Manager
	adminEmail     string
	sessionTTL     time.Duration
}

func NewHandler(
	repo usersRepo,
	sessions loginSessions,
	renderer *render.Renderer,
	metricsManager *metrics.Manager,
	adminEmail string,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		repo:           repo,
		sessions:       sessions,
		renderer:       renderer,
		metricsManager: metricsManager,
		adminEmail:     adminEmail,
		sessionTTL:     sessionTTL,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/register", handler.handleRegisterPage).Methods("GET").Name("register-page")
	router.HandleFunc("/register", handler.handleRegister).Methods("POST").Name("register")
	router.HandleFunc("/login", handler.handleLoginPage).Methods("GET").Name("login-page")
	router.HandleFunc("/login", handler.handleLogin).Methods("POST").Name("login")
	router.HandleFunc("/logout", handler.handleLogout).Methods("GET").Name("logout")
}

func (handler *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "register.gohtml", &render.Data{
		Title:     "Register",
		Principal: auth.PrincipalFromContext(r.Context()),
	})
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Errorf("register failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	name := r.Form.Get("name")
	email := r.Form.Get("email")
	password := r.Form.Get("password")

	if name == "" || email == "" || password == "" {
		handler.renderer.Render(w, r, http.StatusOK, "register.gohtml", &render.Data{
			Title:     "Register",
			Principal: auth.PrincipalFromContext(r.Context()),
			FormError: "All fields are required",
			FormData:  map[string]string{"name": name, "email": email},
		})
		return
	}

	// the duplicate check runs before the hashing on purpose, no point
	// paying for bcrypt when the email is taken anyway
	if _, err := handler.repo.GetByEmail(r.Context(), email); err == nil {
		render.SetFlash(w, "You've already signed up with this email, Log in instead")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	} else if !errors.Is(err, ErrUserNotFound) {
		log.Errorf("register, check existing email: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	role := auth.RoleMember
	if handler.adminEmail != "" && email == handler.adminEmail {
		role = auth.RoleAdmin
	}

	newUser := &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := handler.repo.Add(r.Context(), newUser); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			render.SetFlash(w, "You've already signed up with this email, Log in instead")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		log.Errorf("register, add user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	log.Tracef("new user %d registered", newUser.ID)
	handler.metricsManager.CounterRegisteredUsers.Inc()

	handler.establishSession(w, r, newUser.ID)
}

func (handler *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "login.gohtml", &render.Data{
		Title:     "Log In",
		Principal: auth.PrincipalFromContext(r.Context()),
	})
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Errorf("login failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	email := r.Form.Get("email")
	password := r.Form.Get("password")
	if email == "" || password == "" {
		handler.renderer.Render(w, r, http.StatusOK, "login.gohtml", &render.Data{
			Title:     "Log In",
			Principal: auth.PrincipalFromContext(r.Context()),
			FormError: "Email and password are required",
			FormData:  map[string]string{"email": email},
		})
		return
	}

	user, err := handler.repo.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[email] failed login attempt for: %s", email)
			render.SetFlash(w, "That email does not exist, please try again")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		log.Errorf("login, get user: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for: %s", email)
		render.SetFlash(w, "Password incorrect, please try again")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	handler.establishSession(w, r, user.ID)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := auth.SessionTokenFromRequest(r)
	if token != "" {
		if err := handler.sessions.Logout(r.Context(), token); err != nil && !errors.Is(err, auth.ErrNoSession) {
			log.Errorf("logout: %s", err)
		}
	}

	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) establishSession(w http.ResponseWriter, r *http.Request, userID int) {
	token, err := handler.sessions.Login(r.Context(), userID, time.Now())
	if err != nil {
		log.Errorf("establish session for user %d: %s", userID, err)
		render.SetFlash(w, "Something went wrong, please log in")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	auth.SetSessionCookie(w, token, handler.sessionTTL)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
