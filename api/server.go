/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind a proxy
  3. Logger:     Structured request logging (logrus)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/leaderboard/*    Ranked users and teams
  /api/stats/*          Coin history
  /api/achievements/*   Catalog and per-entity progress
  /api/teams, /api/users  Public directory reads
  /api/admin/login, /api/admin/verify
  /api/admin/*          Everything else, behind RequireAdmin
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built frontend from RouterOptions.StaticDir when it exists.
  Falls back to index.html for client-side routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: RequireAdmin
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	CORSOrigins []string
	StaticDir   string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/users", h.GetUserLeaderboard)
			r.Get("/teams", h.GetTeamLeaderboard)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/user/{id}/history", h.GetUserHistory)
			r.Get("/team/{id}/history", h.GetTeamHistory)
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", h.ListAchievements)
			r.Get("/user/{id}", h.GetUserAchievements)
			r.Get("/team/{id}", h.GetTeamAchievements)
		})

		r.Get("/teams", h.ListTeams)
		r.Get("/teams/{id}", h.GetTeam)
		r.Get("/users/{id}", h.GetUser)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.RequireAdmin)

				r.Post("/verify", h.Verify)
				r.Get("/stats", h.GetStats)

				r.Route("/teams", func(r chi.Router) {
					r.Post("/", h.CreateTeam)
					r.Put("/{id}", h.UpdateTeam)
					r.Delete("/{id}", h.DeleteTeam)
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.ListUsers)
					r.Post("/", h.CreateUser)
					r.Put("/{id}", h.UpdateUser)
					r.Delete("/{id}", h.DeleteUser)
				})

				r.Route("/transactions", func(r chi.Router) {
					r.Post("/", h.AwardCoins)
					r.Post("/team", h.AwardTeamCoins)
					r.Post("/bulk", h.BulkAwardCoins)
				})

				r.Route("/achievements", func(r chi.Router) {
					r.Post("/", h.CreateAchievement)
					r.Put("/{id}", h.UpdateAchievement)
					r.Delete("/{id}", h.DeleteAchievement)
				})

				r.Route("/scenarios", func(r chi.Router) {
					r.Get("/", h.ListScenarios)
					r.Get("/current", h.GetCurrentScenario)
					r.Post("/load", h.LoadScenario)
					r.Post("/reset", h.ResetBoard)
				})
			})
		})
	})

	mountStatic(r, opts.StaticDir)
	return r
}

func mountStatic(r chi.Router, staticDir string) {
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		// Try relative to executable
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err != nil {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Coin Board</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Coin Board API</h1>
<p>The frontend is not built yet. Run <code>cd web && npm install && npm run build</code></p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/leaderboard/users">/api/leaderboard/users</a> - User leaderboard</li>
<li><a href="/api/leaderboard/teams">/api/leaderboard/teams</a> - Team leaderboard</li>
<li><a href="/api/achievements">/api/achievements</a> - Achievement catalog</li>
</ul>
</body>
</html>`))
		})
		return
	}

	fileServer := http.FileServer(http.Dir(staticDir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))

		// SPA routing: serve index.html
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
