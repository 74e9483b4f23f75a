package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/justuscbyok/fitnesstracker/internal/auth"
	"github.com/justuscbyok/fitnesstracker/internal/fitness"
	"github.com/justuscbyok/fitnesstracker/internal/middleware"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/metrics"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
	"github.com/justuscbyok/fitnesstracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type usersRepo interface {
	CreateUser(ctx context.Context, params fitness.CreateUserParams) (*fitness.User, error)
	GetUser(ctx context.Context, id int) (*fitness.User, error)
	GetUserByUsername(ctx context.Context, username string) (*fitness.User, error)
	ListUsers(ctx context.Context) ([]fitness.User, error)
	UpdateUser(ctx context.Context, id int, patch fitness.UserPatch) (*fitness.User, error)
	UserPasswordHash(ctx context.Context, username string) (string, error)
}

const (
	defaultListLimit = 100

	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
)

type Handler struct {
	repo        usersRepo
	authService *auth.Service
	metrics     *metrics.Manager
}

func NewHandler(
	repo usersRepo,
	authService *auth.Service,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:        repo,
		authService: authService,
		metrics:     metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginRateLimitAllowedPerMin int,
) {
	loginRouter := mainRouter.PathPrefix("/users/token").Subrouter()
	loginRouter.HandleFunc("", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	// rate limit the login endpoint to slow down credential guessing
	loginRouter.Use(middleware.RateLimit(rateLimiter, "login", loginRateLimitAllowedPerMin, handler.metrics))

	usersRouter := mainRouter.PathPrefix("/users").Subrouter()
	usersRouter.HandleFunc("/register", handler.handleRegister).Methods("POST", "OPTIONS").Name("register")
	usersRouter.HandleFunc("/logout", handler.handleLogout).Methods("POST", "OPTIONS").Name("logout")
	usersRouter.HandleFunc("/me", handler.handleGetMe).Methods("GET", "OPTIONS").Name("get-me")
	usersRouter.HandleFunc("/me", handler.handleUpdateMe).Methods("PUT", "OPTIONS").Name("update-me")
	usersRouter.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-users")
	usersRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-user")
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (req *registerRequest) validate() error {
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return errors.New("error, invalid email")
	}
	if len(req.Username) < usernameMinLen || len(req.Username) > usernameMaxLen {
		return fmt.Errorf("error, username length must be between %d and %d", usernameMinLen, usernameMaxLen)
	}
	if len(req.Password) < passwordMinLen {
		return fmt.Errorf("error, password must have at least %d characters", passwordMinLen)
	}
	return nil
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}

	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.CreateUser(ctx, fitness.CreateUserParams{
		Email:        req.Email,
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: passwordHash,
	})
	switch {
	case errors.Is(err, fitness.ErrUsernameTaken):
		http.Error(w, "username already registered", http.StatusBadRequest)
		return
	case errors.Is(err, fitness.ErrEmailTaken):
		http.Error(w, "email already registered", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("register user %q: %s", req.Username, err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRegisteredUsers.Inc()
	log.Debugf("new user registered: [%d] %s", user.ID, user.Username)

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("register, marshal user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Tracef("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return
	}
	if loginReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetUserByUsername(ctx, loginReq.Username)
	if err != nil {
		log.Tracef("[username] failed login attempt for user: %s", loginReq.Username)
		respondWrongCredentials(w)
		return
	}

	passwordHash, err := handler.repo.UserPasswordHash(ctx, user.Username)
	if err != nil {
		log.Errorf("login, get password hash for %q: %s", user.Username, err)
		respondWrongCredentials(w)
		return
	}
	if !pkg.CheckPasswordHash(loginReq.Password, passwordHash) {
		log.Tracef("[password] failed login attempt for user: %s", loginReq.Username)
		respondWrongCredentials(w)
		return
	}

	if !user.IsActive {
		http.Error(w, "inactive user", http.StatusBadRequest)
		return
	}

	token, err := handler.authService.Login(ctx, user.Username)
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterLogins.Inc()
	log.Tracef("new login success: %s", user.Username)

	tokenJson, err := json.Marshal(tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
	if err != nil {
		log.Errorf("login, marshal token: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, tokenJson)
}

func respondWrongCredentials(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "incorrect username or password", http.StatusUnauthorized)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	authToken := middleware.BearerToken(r)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	log.Tracef("logout success")
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.getMe")
	defer span.End()

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("get me, marshal user: %s", err)
		http.Error(w, "failed to get user", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

func (handler *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updateMe")
	defer span.End()

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var patch fitness.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Tracef("update me, unmarshal json params: %s", err)
		http.Error(w, "update failed", http.StatusBadRequest)
		return
	}

	updated, err := handler.repo.UpdateUser(ctx, user.ID, patch)
	switch {
	case errors.Is(err, fitness.ErrUserNotFound):
		// the session outlived its user
		http.Error(w, "update failed", http.StatusBadRequest)
		return
	case err != nil:
		log.Errorf("update user %d: %s", user.ID, err)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("update me, marshal user: %s", err)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	skip, limit := 0, defaultListLimit
	var err error
	if skipParam := r.URL.Query().Get("skip"); skipParam != "" {
		if skip, err = strconv.Atoi(skipParam); err != nil || skip < 0 {
			http.Error(w, "error, invalid skip", http.StatusBadRequest)
			return
		}
	}
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if limit, err = strconv.Atoi(limitParam); err != nil || limit < 0 {
			http.Error(w, "error, invalid limit", http.StatusBadRequest)
			return
		}
	}

	users, err := handler.repo.ListUsers(ctx)
	if err != nil {
		log.Errorf("list users: %s", err)
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	if skip > len(users) {
		skip = len(users)
	}
	end := skip + limit
	if end > len(users) {
		end = len(users)
	}
	users = users[skip:end]

	usersJson, err := json.Marshal(users)
	if err != nil {
		log.Errorf("list users, marshal: %s", err)
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, usersJson)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, fitness.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get user %d: %s", id, err)
		http.Error(w, "failed to get user", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("get user, marshal: %s", err)
		http.Error(w, "failed to get user", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}
