package misc

import (
	"encoding/json"
	"net/http"

	"github.com/justuscbyok/fitnesstracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Handler serves the service info endpoints that need no session.
type Handler struct {
	versionInfo string
}

func NewHandler(versionInfo string) *Handler {
	return &Handler{
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/healthz", handler.handleHealthz).Methods("GET", "OPTIONS").Name("healthz")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET", "OPTIONS").Name("version")
}

type apiInfo struct {
	AppName     string `json:"appName"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

type rootResponse struct {
	Message   string            `json:"message"`
	APIInfo   apiInfo           `json:"apiInfo"`
	Endpoints map[string]string `json:"endpoints"`
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	response := rootResponse{
		Message: "Welcome to the Fitness Tracker API!",
		APIInfo: apiInfo{
			AppName:     "Fitness Tracker",
			Version:     handler.versionInfo,
			Description: "Track and manage your workouts, exercises, and fitness progress",
		},
		Endpoints: map[string]string{
			"users":         "User registration and authentication",
			"workouts":      "Create and manage workouts",
			"exercises":     "Repository of exercises",
			"workout-plans": "Create structured workout plans",
			"progress":      "Track fitness metrics and progress",
		},
	}

	responseJson, err := json.Marshal(response)
	if err != nil {
		log.Errorf("root handler, marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, responseJson)
}

func (handler *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, `{"status":"healthy"}`)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
