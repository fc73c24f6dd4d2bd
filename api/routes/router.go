package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifecert/lifecert-backend/api/controllers"
	"github.com/lifecert/lifecert-backend/api/middleware"
	"github.com/lifecert/lifecert-backend/internal/certificates"
	"github.com/lifecert/lifecert-backend/internal/courses"
	"github.com/lifecert/lifecert-backend/internal/ledger"
	"github.com/lifecert/lifecert-backend/internal/platform"
	"github.com/lifecert/lifecert-backend/pkg/config"
	"github.com/lifecert/lifecert-backend/pkg/db"
	"github.com/lifecert/lifecert-backend/pkg/enums"
	"github.com/lifecert/lifecert-backend/pkg/logger"
	"github.com/lifecert/lifecert-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsRegistry *prometheus.Registry,
	ledgerService ledger.Service,
	certificateService certificates.Service,
	courseService courses.Service,
	platformService platform.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/certificates/verify", controllers.PublicCertificateVerify(certificateService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/certificates", func(r chi.Router) {
			r.Get("/me", controllers.CertificateMine(certificateService, logg))
			r.Get("/{certificateId}", controllers.CertificateDetail(certificateService, logg))
			r.Post("/", controllers.CertificateMintOrAppend(ledgerService, logg))
			r.Post("/batch", controllers.CertificateAppendBatch(ledgerService, logg))
			r.Post("/{certificateId}/refresh", controllers.CertificateRefresh(ledgerService, logg))
		})

		r.Route("/v1/courses", func(r chi.Router) {
			r.Post("/", controllers.CourseCreate(courseService, logg))
			r.Get("/{courseId}", controllers.CourseDetail(courseService, logg))
			r.Put("/{courseId}/price", controllers.CourseSetPrice(courseService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/v1/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminGetSettings(platformService, logg))
			r.Put("/mint-price", controllers.AdminSetMintPrice(platformService, logg))
			r.Put("/append-price", controllers.AdminSetAppendPrice(platformService, logg))
			r.Put("/treasury", controllers.AdminSetTreasury(platformService, logg))
			r.Put("/name", controllers.AdminSetPlatformName(platformService, logg))
			r.Put("/verification-route", controllers.AdminSetVerificationRoute(platformService, logg))
			r.Put("/metadata-base-uri", controllers.AdminSetMetadataBaseURI(platformService, logg))
			r.Put("/paused", controllers.AdminSetPaused(platformService, logg))
		})

		r.Route("/v1/certificates", func(r chi.Router) {
			r.Post("/{certificateId}/revoke", controllers.AdminRevokeCertificate(certificateService, logg))
		})

		r.Route("/v1/courses", func(r chi.Router) {
			r.Post("/completions", controllers.AdminImportCompletion(courseService, logg))
			r.Post("/licenses", controllers.AdminGrantLicense(courseService, logg))
		})
	})

	return r
}
