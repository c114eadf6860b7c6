// Package fixture serves a stand-in for the supervisor registration page.
// It renders the same form ids as the real page and answers submissions the
// way the real backend does, so the verifier can be exercised without the
// hosted application.
package fixture

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/badoux/checkmail"
	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Paths served by the fixture
const (
	RegisterPath = "/register-supervisor.html"
	APIPath      = "/api/supervisor"
)

// Messages shown in the page's message element
const (
	MessagePartialSuccess   = "Sua conta foi criada, mas não foi possível conectar ao portal da UNA-SUS."
	MessageSuccess          = "Supervisor %s registrado com sucesso."
	MessageEmailInUse       = "Este e-mail já está em uso."
	MessagePasswordMismatch = "As senhas não coincidem."
	MessageRequired         = "E-mail e senha são obrigatórios."
	MessageInvalidPassword  = "A senha é inválida. Deve ter no mínimo 6 caracteres."
	MessageInvalidEmail     = "O endereço de e-mail é inválido."
)

const minPasswordLength = 6

// Mode selects how a valid registration is answered
type Mode string

// Mode constants
const (
	// ModePartial creates the account but reports that the UNA-SUS import failed
	ModePartial Mode = "partial"

	// ModeSuccess creates the account and reports full success
	ModeSuccess Mode = "success"

	// ModeSilent creates the account and never shows a message
	ModeSilent Mode = "silent"
)

// ParseMode returns the mode named by s
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModePartial, ModeSuccess, ModeSilent:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode: %s", s)
	}
}

// Server handles HTTP requests for the stand-in registration page
type Server struct {
	*gmux.Router
	mode    Mode
	delay   time.Duration
	version string
	tpl     *Template

	mu       sync.Mutex
	accounts map[string]bool
}

// NewServer returns a new server
// delay is how long a submission takes to answer
func NewServer(mode Mode, delay time.Duration, version string) (*Server, error) {
	tpl, err := NewTemplate()
	if err != nil {
		return nil, err
	}

	this := &Server{
		Router:   gmux.NewRouter(),
		mode:     mode,
		delay:    delay,
		version:  version,
		tpl:      tpl,
		accounts: make(map[string]bool),
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodGet).Path(RegisterPath).Handler(this.getRegisterPage())
	r.Methods(http.MethodPost).Path(APIPath).Handler(this.postSupervisor())

	return this, nil
}

// Accounts returns the registered email addresses, sorted
func (s *Server) Accounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	emails := make([]string, 0, len(s.accounts))
	for email := range s.accounts {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	return emails
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    Mode   `json:"mode"`
}

func (s *Server) getHealth() http.HandlerFunc {
	payload := healthResponse{
		Status:  "OK",
		Version: s.version,
		Mode:    s.mode,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload)
	}
}

type pageData struct {
	Title   string
	APIPath string
}

func (s *Server) getRegisterPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := s.tpl.RenderTemplate("register-supervisor.html", pageData{
			Title:   "Cadastro de Supervisor",
			APIPath: APIPath,
		})
		if err != nil {
			logrus.WithError(err).Error("could not render registration page")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

type supervisorRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) postSupervisor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req supervisorRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		if s.delay > 0 {
			select {
			case <-time.After(s.delay):
			case <-r.Context().Done():
				return
			}
		}

		email := strings.TrimSpace(req.Email)
		switch {
		case email == "" || req.Password == "":
			writeJSONError(w, http.StatusBadRequest, MessageRequired)
			return
		case req.Password != req.ConfirmPassword:
			writeJSONError(w, http.StatusBadRequest, MessagePasswordMismatch)
			return
		case len(req.Password) < minPasswordLength:
			writeJSONError(w, http.StatusBadRequest, MessageInvalidPassword)
			return
		}

		if err := checkmail.ValidateFormat(email); err != nil {
			writeJSONError(w, http.StatusBadRequest, MessageInvalidEmail)
			return
		}

		if !s.register(email) {
			writeJSONError(w, http.StatusConflict, MessageEmailInUse)
			return
		}

		logrus.WithFields(logrus.Fields{
			"email": email,
			"mode":  s.mode,
		}).Info("supervisor registered")

		switch s.mode {
		case ModeSuccess:
			writeJSON(w, http.StatusCreated, registrationResponse{
				Status:  "success",
				Message: fmt.Sprintf(MessageSuccess, email),
			})
		case ModeSilent:
			writeJSON(w, http.StatusCreated, registrationResponse{Status: "success"})
		default:
			writeJSON(w, http.StatusCreated, registrationResponse{
				Status:  "partial",
				Message: MessagePartialSuccess,
			})
		}
	}
}

// register records email and returns false if it is already taken
func (s *Server) register(email string) bool {
	key := strings.ToLower(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accounts[key] {
		return false
	}

	s.accounts[key] = true
	return true
}
