// Package httpapi - JSON API расписания для веб-кабинета школы. Сотрудник
// определяется по заголовку X-Staff-ID, который выставляет доверенный шлюз.
package httpapi

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Server struct {
	store     service.Store
	staff     *service.StaffService
	ledgers   *service.LedgerService
	packages  *service.PackageService
	payments  *service.PaymentService
	directory *service.DirectoryService
	opts      service.Options
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewServer(store service.Store, opts service.Options, logger *zap.Logger) *Server {
	logger = logger.Named("http")
	ledgers := service.NewLedgerService(store, store, store, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Server{
		store:     store,
		staff:     service.NewStaffService(store, logger),
		ledgers:   ledgers,
		packages:  service.NewPackageService(store, store, store, store, logger),
		payments:  service.NewPaymentService(store, store, ledgers, logger),
		directory: service.NewDirectoryService(store, store, store, logger),
		opts:      opts,
		validate:  validate,
		logger:    logger,
	}
}

// Router собирает маршруты API
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.identify)

		r.Get("/schedule", s.getSchedule)
		r.Get("/schedule/week.png", s.getWeekImage)

		r.Route("/lessons", func(r chi.Router) {
			r.Post("/", s.createLesson)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.updateLesson)
				r.Delete("/", s.removeLesson)
				r.Post("/cancel", s.cancelLesson)
				r.Post("/complete", s.completeLesson)
				r.Get("/client", s.lessonClient)
			})
		})

		r.Route("/packages", func(r chi.Router) {
			r.With(requireAdmin).Post("/", s.enroll)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getPackage)
				r.Get("/ledger", s.getLedger)
				r.Post("/sessions", s.logSession)
				r.Get("/payments", s.listPayments)
				r.With(requireAdmin).Post("/payments", s.recordPayment)
				r.With(requireAdmin).Post("/archive", s.archivePackage)
				r.With(requireAdmin).Put("/instructor", s.assignInstructor)
			})
		})

		r.With(requireAdmin).Put("/payments/{id}/status", s.setPaymentStatus)

		r.Route("/clients", func(r chi.Router) {
			r.With(requireAdmin).Post("/", s.createClient)
			r.Get("/{id}", s.getClient)
			r.Get("/{id}/packages", s.clientPackages)
			r.With(requireAdmin).Delete("/{id}", s.deactivateClient)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", s.listCourses)
			r.With(requireAdmin).Post("/", s.createCourse)
			r.With(requireAdmin).Post("/{id}/archive", s.archiveCourse)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", s.listInstructors)
			r.With(requireAdmin).Post("/", s.createStaff)
			r.Get("/{id}/packages", s.instructorPackages)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scheduler - отдельный вид на каждый запрос
func (s *Server) scheduler(sess service.Session) *service.Scheduler {
	return service.NewScheduler(s.store, s.store, s.ledgers, nil, sess, s.opts, s.logger)
}

func (s *Server) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
