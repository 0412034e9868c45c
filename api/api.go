package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/bremer-sv/camp-registration/camps"
	"github.com/bremer-sv/camp-registration/pricing"
	"github.com/bremer-sv/camp-registration/registration"
)

type Environment int

const (
	LOCAL Environment = iota
	PROD
)

// DB is everything the API needs from the store: camp reference data plus
// the per-camp registration sheets.
type DB interface {
	camps.Repository
	registration.Repository

	ListSheets(ctx context.Context) ([]string, error)
}

// Config carries the operator-tuned values the handlers need.
type Config struct {
	// FromAddress is the sender identity on all outgoing mail.
	FromAddress string
	// StaffAddress receives the internal alert for every registration.
	StaffAddress string
	// AdminToken guards the staff-only endpoints. Empty disables them.
	AdminToken string
}

type API struct {
	db         DB
	workflow   *registration.Workflow
	logger     *slog.Logger
	env        Environment
	adminToken string
}

func NewAPI(db DB, emailSender email.Sender, logger *slog.Logger, env Environment, cfg Config) *API {
	pricer := pricing.NewResolver(db, logger)
	notifier := registration.NewNotifier(emailSender, cfg.FromAddress, cfg.StaffAddress)

	return &API{
		db:         db,
		workflow:   registration.NewWorkflow(db, db, pricer, notifier, logger),
		logger:     logger,
		env:        env,
		adminToken: cfg.AdminToken,
	}
}

// Handler builds the routed and middleware-wrapped HTTP surface.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /registrations", a.submitRegistration)
	mux.HandleFunc("GET /camps", a.getCamps)
	mux.HandleFunc("POST /camps", a.createCamp)
	mux.HandleFunc("GET /camps/{campName}/registrations", a.listRegistrations)
	mux.HandleFunc("GET /sheets", a.listSheets)
	mux.HandleFunc("GET /healthz", a.healthz)

	return useMiddlewares(mux,
		a.corsMiddleware(),
		a.loggingMiddleware(),
		a.requestIdMiddleware(),
	)
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
