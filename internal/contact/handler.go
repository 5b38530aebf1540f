package contact

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/render"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/telemetry/metrics"
)

type Handler struct {
	mailer         Mailer
	renderer       *render.Renderer
	metricsManager *metrics.Manager
}

func NewHandler(mailer Mailer, renderer *render.Renderer, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		mailer:         mailer,
		renderer:       renderer,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/contact", handler.handleContactPage).Methods("GET").Name("contact-page")
	router.HandleFunc("/contact", handler.handleContact).Methods("POST").Name("contact")
}

type contactView struct {
	MsgSent     bool
	ReferenceID string
}

func (handler *Handler) handleContactPage(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "contact.gohtml", &render.Data{
		Title:     "Contact Me",
		Principal: auth.PrincipalFromContext(r.Context()),
	})
}

func (handler *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		log.Errorf("contact, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	msg := Message{
		Name:    r.Form.Get("name"),
		Email:   r.Form.Get("email"),
		Phone:   r.Form.Get("phone"),
		Message: r.Form.Get("message"),
	}

	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		handler.renderer.Render(w, r, http.StatusOK, "contact.gohtml", &render.Data{
			Title:     "Contact Me",
			Principal: principal,
			FormError: "Name, email and message are required",
			FormData: map[string]string{
				"name":    msg.Name,
				"email":   msg.Email,
				"phone":   msg.Phone,
				"message": msg.Message,
			},
		})
		return
	}

	if err := handler.mailer.Send(msg); err != nil {
		log.Errorf("contact, send mail: %s", err)
		handler.renderer.Render(w, r, http.StatusOK, "contact.gohtml", &render.Data{
			Title:     "Contact Me",
			Principal: principal,
			FormError: "Failed to send your message, please try again later",
			FormData: map[string]string{
				"name":    msg.Name,
				"email":   msg.Email,
				"phone":   msg.Phone,
				"message": msg.Message,
			},
		})
		return
	}

	// the reference id only appears in logs and on the confirmation page,
	// enough to pair a complaint with a log line later
	referenceID := uuid.NewString()
	log.Tracef("contact message %s relayed from %s", referenceID, msg.Email)
	handler.metricsManager.CounterContactMessages.Inc()

	handler.renderer.Render(w, r, http.StatusOK, "contact.gohtml", &render.Data{
		Title:     "Contact Me",
		Principal: principal,
		View: contactView{
			MsgSent:     true,
			ReferenceID: referenceID,
		},
	})
}
