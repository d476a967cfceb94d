package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "pet-sitting-marketplace/internal/adapters/storage/memory"
	pg "pet-sitting-marketplace/internal/adapters/storage/postgres"
	"pet-sitting-marketplace/internal/domain/bookings"
	"pet-sitting-marketplace/internal/domain/carerequests"
	"pet-sitting-marketplace/internal/domain/listings"
	"pet-sitting-marketplace/internal/domain/messaging"
	"pet-sitting-marketplace/internal/domain/pets"
	"pet-sitting-marketplace/internal/domain/reviews"
	"pet-sitting-marketplace/internal/domain/wishlists"
	"pet-sitting-marketplace/internal/middleware"
	"pet-sitting-marketplace/internal/platform/logger"
	"pet-sitting-marketplace/internal/ports/auth"
	"pet-sitting-marketplace/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: push notifications para mensajes nuevos.
	Pusher notify.Pusher

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		petRepo      pets.Repository
		listingRepo  listings.Repository
		bookingRepo  bookings.Repository
		careRepo     carerequests.Repository
		msgRepo      messaging.Repository
		reviewRepo   reviews.Repository
		wishlistRepo wishlists.Repository
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
		petRepo = pg.NewPetsRepo(db)
		listingRepo = pg.NewListingsRepo(db)
		bookingRepo = pg.NewBookingsRepo(db)
		careRepo = pg.NewCareRequestsRepo(db)
		msgRepo = pg.NewMessagingRepo(db)
		reviewRepo = pg.NewReviewsRepo(db)
		wishlistRepo = pg.NewWishlistsRepo(db)
	} else {
		petRepo = mem.NewPetRepo()
		listingRepo = mem.NewListingRepo()
		bookingRepo = mem.NewBookingRepo()
		careRepo = mem.NewCareRequestRepo()
		msgRepo = mem.NewMessagingRepo()
		reviewRepo = mem.NewReviewRepo()
		wishlistRepo = mem.NewWishlistRepo()
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	listingsSvc := listings.NewService(listingRepo)
	messagingSvc := messaging.NewService(msgRepo)
	if opts.Pusher != nil {
		messagingSvc = messagingSvc.WithPusher(opts.Pusher, log)
	}
	bookingsSvc := bookings.NewService(bookingRepo, messagingSvc, listingsSvc)
	careSvc := carerequests.NewService(careRepo, messagingSvc)
	reviewsSvc := reviews.NewService(reviewRepo)
	wishlistsSvc := wishlists.NewService(wishlistRepo)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	listings.RegisterRoutes(r, listingsSvc)
	bookings.RegisterRoutes(r, bookingsSvc, petsSvc, listingsSvc, messagingSvc)
	carerequests.RegisterRoutes(r, careSvc, bookingsSvc)
	messaging.RegisterRoutes(r, messagingSvc)
	reviews.RegisterRoutes(r, reviewsSvc, bookingsSvc)
	wishlists.RegisterRoutes(r, wishlistsSvc)

	return r
}
