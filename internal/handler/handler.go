package handler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/mobility-ops/console/backend/internal/config"
	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/repository"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
	"github.com/mobility-ops/console/backend/internal/storage"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	objectSink  *storage.ObjectSink
	matcher     *identity.Matcher
	location    *time.Location

	codesMu sync.RWMutex
	codes   shiftcode.Table

	Mux *chi.Mux
}

// NewHandler recibe la tabla de códigos ya combinada con la base de datos.
// sink puede ser nil si no hay almacenamiento de objetos configurado.
func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client, sink *storage.ObjectSink, codes shiftcode.Table) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	es := es.New()
	uni := ut.New(es, es)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Dispatch.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("zona horaria inválida %q: %w", cfg.Dispatch.TimeZone, err)
	}

	var matcher *identity.Matcher
	if len(cfg.Matching.Stoplist) > 0 {
		stoplist := append([]string{}, identity.DefaultStoplist...)
		matcher = identity.NewMatcher(append(stoplist, cfg.Matching.Stoplist...))
	}

	if codes == nil {
		codes = shiftcode.DefaultTable()
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		objectSink:  sink,
		matcher:     matcher,
		location:    loc,
		codes:       codes,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	staff := h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleAdmin})
	admin := h.RequiredRole([]domain.Role{domain.RoleAdmin})

	// todas las rutas requieren el token del proveedor de autenticación
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.With(staff).Get("/", h.GetAllProfiles)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(staff)
				r.Use(h.profileInfo)
				r.Get("/", h.GetProfile)
				r.With(admin).Patch("/", h.UpdateProfile)
			})
		})

		r.Route("/predata", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.GetAllPredata)
			r.Post("/import", h.ImportPredata)
		})

		r.Route("/shift-codes", func(r chi.Router) {
			r.Get("/", h.GetShiftCodes)
			r.Get("/resolve", h.ResolveShiftCode)
			r.With(admin).Put("/{code}", h.PutShiftCode)
			r.With(admin).Delete("/{code}", h.DeleteShiftCode)
		})

		r.With(staff).Post("/identity/resolve", h.ResolveIdentity)
		r.With(staff).Post("/rosters/import", h.ImportRoster)

		r.Route("/backfill-suggestions", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.GetBackfillSuggestions)
			r.Route("/{profileID}", func(r chi.Router) {
				r.Post("/confirm", h.ConfirmBackfillSuggestion)
				r.Delete("/", h.DeleteBackfillSuggestion)
			})
		})

		r.Route("/manifests/dispatch", func(r chi.Router) {
			r.Use(staff)
			r.Get("/", h.GetDispatchManifest)
			r.Post("/send", h.SendDispatchManifest)
		})
	})
}

func (h *Handler) shiftCodes() shiftcode.Table {
	h.codesMu.RLock()
	defer h.codesMu.RUnlock()
	return h.codes
}

func (h *Handler) setShiftCodes(codes shiftcode.Table) {
	h.codesMu.Lock()
	defer h.codesMu.Unlock()
	h.codes = codes
}
