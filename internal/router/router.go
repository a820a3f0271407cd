package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "pet-discharge-portal/docs"
	"pet-discharge-portal/internal/adapters/auth/atlas"
	"pet-discharge-portal/internal/adapters/cache/rediscache"
	"pet-discharge-portal/internal/adapters/capabilities/clinicplans"
	mem "pet-discharge-portal/internal/adapters/storage/memory"
	pg "pet-discharge-portal/internal/adapters/storage/postgres"
	"pet-discharge-portal/internal/domain/discharges"
	"pet-discharge-portal/internal/domain/doselog"
	"pet-discharge-portal/internal/domain/patients"
	"pet-discharge-portal/internal/domain/sharing"
	"pet-discharge-portal/internal/middleware"
	"pet-discharge-portal/internal/platform/logger"
	"pet-discharge-portal/internal/ports/auth"
	"pet-discharge-portal/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: cache de métricas. Si es nil se intenta por env (REDIS_ADDR).
	Cache patients.MetricsCache

	// Opcional: gating de features por plan comercial.
	Capabilities capabilities.CapabilitiesResolver

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	verifier := opts.AuthVerifier
	if verifier == nil {
		verifier = verifierFromEnv(log)
	}
	r.Use(middleware.AuthContext(verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		dischargeRepo discharges.Repository
		doseRepo      doselog.DoseRepository
		symptomRepo   doselog.SymptomRepository
		shareRepo     sharing.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres open failed, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		dischargeRepo = pg.NewDischargesRepo(db)
		doseRepo = pg.NewDoseLogRepo(db)
		symptomRepo = pg.NewSymptomLogRepo(db)
		shareRepo = pg.NewSharingRepo(db)
	} else {
		dischargeRepo = mem.NewDischargeRepo()
		doseRepo = mem.NewDoseLogRepo()
		symptomRepo = mem.NewSymptomLogRepo()
		shareRepo = mem.NewSharingRepo()
	}

	cache := opts.Cache
	if cache == nil {
		if client := rediscache.NewClientFromEnv(); client != nil {
			cache = rediscache.New(client, cacheTTLFromEnv())
		}
	}

	caps := opts.Capabilities
	if caps == nil {
		caps = capabilitiesFromEnv()
	}

	// Services por módulo
	dischargesSvc := discharges.NewService(dischargeRepo)
	doselogSvc := doselog.NewService(doseRepo, symptomRepo)
	sharingSvc := sharing.NewService(shareRepo)
	patientsSvc := patients.NewService(dischargeRepo, doseRepo, symptomRepo, log)

	// Rutas por módulo
	discharges.RegisterRoutes(r, dischargesSvc, sharingSvc)
	doselog.RegisterRoutes(r, doselogSvc, dischargesSvc, sharingSvc)
	sharing.RegisterRoutes(r, sharingSvc, dischargesSvc)
	patients.RegisterRoutes(r, patientsSvc, cache, caps)

	return r
}

// verifierFromEnv instancia el verifier de Atlas solo si está configurado;
// sin ATLAS_BASE_URL el middleware queda en modo dev (X-Debug-User-ID).
func verifierFromEnv(log logger.Logger) auth.AuthVerifier {
	baseURL := os.Getenv("ATLAS_BASE_URL")
	if baseURL == "" {
		return nil
	}

	client, err := atlas.NewClient(atlas.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("ATLAS_API_KEY"),
	})
	if err != nil {
		log.Warn("atlas client misconfigured, auth disabled", map[string]any{"error": err.Error()})
		return nil
	}
	return atlas.NewVerifier(client)
}

func capabilitiesFromEnv() capabilities.CapabilitiesResolver {
	baseURL := os.Getenv("CLINIC_PLANS_BASE_URL")
	if baseURL == "" {
		return nil
	}

	client, err := clinicplans.NewClient(clinicplans.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("CLINIC_PLANS_API_KEY"),
	})
	if err != nil {
		return nil
	}
	return clinicplans.NewResolver(client)
}

func cacheTTLFromEnv() time.Duration {
	raw := os.Getenv("METRICS_CACHE_TTL")
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
