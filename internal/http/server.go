package httpapi

import (
	"net/http"

	"digilib-backend-go/internal/config"
	"digilib-backend-go/internal/services"
	"digilib-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the full persistence surface the server needs. Both the postgres
// and the in-memory implementations satisfy it.
type Store interface {
	store.Users
	store.Books
	store.Downloads
	store.Borrows
	store.Stats
}

type Server struct {
	Config   config.Config
	Tokens   services.TokenService
	Sessions *services.SessionManager
	Hub      *services.EventHub

	Users store.Users
	Stats store.Stats

	Auth      *services.AuthService
	Catalog   *services.CatalogService
	Borrows   *services.BorrowService
	Downloads *services.DownloadService
	Accounts  *services.AccountService
	Media     services.MediaStore
}

func NewServer(cfg config.Config, st Store, hub *services.EventHub) *Server {
	sessions := services.NewSessionManager()
	media := services.MediaStore{Base: cfg.MediaStoragePath}
	return &Server{
		Config:    cfg,
		Tokens:    services.TokenService{Secret: []byte(cfg.SessionSecret), Issuer: cfg.SessionIssuer},
		Sessions:  sessions,
		Hub:       hub,
		Users:     st,
		Stats:     st,
		Auth:      services.NewAuthService(st, sessions),
		Catalog:   services.NewCatalogService(st, media),
		Borrows:   services.NewBorrowService(st, st, hub),
		Downloads: services.NewDownloadService(st, st, media),
		Accounts:  services.NewAccountService(st, sessions),
		Media:     media,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(MetricsMiddleware())
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(WithSession(s.Tokens, s.Sessions, s.Users))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/logout", s.Logout)
		api.With(RequireAuth).Get("/auth/me", s.Me)

		api.Route("/books", func(books chi.Router) {
			books.Get("/", s.ListBooks)
			books.Get("/{bookId}", s.GetBook)
			books.With(RequireAuth).Get("/{bookId}/download", s.DownloadBook)
		})

		api.Route("/me", func(me chi.Router) {
			me.Use(RequireAuth)
			me.Get("/downloads", s.MyDownloads)
			me.Get("/requests", s.MyRequests)
			me.Get("/loans", s.MyLoans)
		})

		api.Route("/borrow", func(borrow chi.Router) {
			borrow.Use(RequireAuth)
			borrow.Post("/requests", s.RequestBorrow)
			borrow.Delete("/requests/{requestId}", s.CancelRequest)
			borrow.Post("/loans/{recordId}/return", s.ReturnLoan)
		})

		api.Route("/staff", func(staff chi.Router) {
			staff.Use(RequireStaff)
			staff.Get("/dashboard", s.Dashboard)
			staff.Route("/requests", func(requests chi.Router) {
				requests.Get("/", s.ListRequests)
				requests.Post("/{requestId}/approve", s.ApproveRequest)
				requests.Post("/{requestId}/reject", s.RejectRequest)
			})
			staff.Route("/loans", func(loans chi.Router) {
				loans.Get("/", s.ListLoans)
				loans.Post("/{recordId}/return", s.ReturnLoan)
			})
			staff.Route("/books", func(books chi.Router) {
				books.Post("/", s.CreateBook)
				books.Put("/{bookId}", s.UpdateBook)
				books.Delete("/{bookId}", s.DeleteBook)
				books.Post("/{bookId}/cover", s.UploadCover)
				books.Post("/{bookId}/pdf", s.UploadPDF)
			})
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(RequireAdmin)
			admin.Get("/status", s.ServerStatus)
			admin.Route("/users", func(users chi.Router) {
				users.Get("/", s.ListUsers)
				users.Post("/", s.CreateUser)
				users.Put("/{userId}", s.UpdateUser)
				users.Delete("/{userId}", s.DeleteUser)
				users.Post("/{userId}/password", s.ResetPassword)
			})
		})
	})

	r.Get("/media/*", s.MediaContent)
	r.Get("/ws/events", s.EventsSocket)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, http.StatusOK, "ok", nil)
	})
	return r
}
