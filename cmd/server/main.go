package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"cinelist"
	"cinelist/internal/auth"
	"cinelist/internal/database"
	"cinelist/internal/handlers"
	"cinelist/internal/services"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	dbPath := getEnv("DATABASE_PATH", "./cinelist.db")
	port := getEnv("PORT", "5000")
	jwtSecret := getEnv("JWT_SECRET", "")
	tmdbAPIKey := getEnv("TMDB_API_KEY", "")
	corsOrigin := getEnv("CORS_ORIGIN", "*")

	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
	if tmdbAPIKey == "" {
		log.Fatal("TMDB_API_KEY environment variable is required")
	}

	// Initialize database
	db, err := database.Connect(dbPath)
	if err != nil {
		log.Fatal("Database connection failed:", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	// Token issuer and middleware
	issuer := auth.NewIssuer(jwtSecret)
	requireAuth := auth.RequireAuth(issuer)

	// Gateway to the external metadata provider
	tmdbClient := services.NewTMDBClient(tmdbAPIKey)

	// Same window as the old auth limiter: 20 requests per 15 minutes
	authLimiter := services.NewRateLimiter(20, 15*time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, issuer)
	listHandler := handlers.NewListHandler(db)
	movieHandler := handlers.NewMovieHandler(tmdbClient)

	mux := http.NewServeMux()

	// Health check (no auth required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	mux.Handle("POST /api/auth/register", authLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.GetMe)).ServeHTTP)
	mux.HandleFunc("GET /api/auth/friends", requireAuth(http.HandlerFunc(authHandler.GetFriends)).ServeHTTP)
	mux.HandleFunc("POST /api/auth/friends/add", requireAuth(http.HandlerFunc(authHandler.AddFriend)).ServeHTTP)

	// List routes
	mux.HandleFunc("POST /api/lists", requireAuth(http.HandlerFunc(listHandler.CreateList)).ServeHTTP)
	mux.HandleFunc("GET /api/lists", requireAuth(http.HandlerFunc(listHandler.GetMyLists)).ServeHTTP)
	mux.HandleFunc("GET /api/lists/shared/with-me", requireAuth(http.HandlerFunc(listHandler.GetSharedWithMe)).ServeHTTP)
	mux.HandleFunc("GET /api/lists/{id}", requireAuth(http.HandlerFunc(listHandler.GetList)).ServeHTTP)
	mux.HandleFunc("PUT /api/lists/{id}", requireAuth(http.HandlerFunc(listHandler.UpdateList)).ServeHTTP)
	mux.HandleFunc("DELETE /api/lists/{id}", requireAuth(http.HandlerFunc(listHandler.DeleteList)).ServeHTTP)
	mux.HandleFunc("POST /api/lists/{id}/movies", requireAuth(http.HandlerFunc(listHandler.AddMovieToList)).ServeHTTP)
	mux.HandleFunc("DELETE /api/lists/{id}/movies/{movieId}", requireAuth(http.HandlerFunc(listHandler.RemoveMovieFromList)).ServeHTTP)
	mux.HandleFunc("POST /api/lists/{id}/share", requireAuth(http.HandlerFunc(listHandler.ShareList)).ServeHTTP)

	// Movie metadata proxy routes (no auth required)
	mux.HandleFunc("GET /api/movies/search", movieHandler.Search)
	mux.HandleFunc("GET /api/movies/popular", movieHandler.Popular)
	mux.HandleFunc("GET /api/movies/popular/series", movieHandler.PopularSeries)
	mux.HandleFunc("GET /api/movies/top-rated", movieHandler.TopRated)
	mux.HandleFunc("GET /api/movies/now-playing", movieHandler.NowPlaying)
	mux.HandleFunc("GET /api/movies/discover", movieHandler.Discover)
	mux.HandleFunc("GET /api/movies/genres", movieHandler.Genres)

	// SPA routes - serve index.html for client-side routing
	spaRoutes := []string{"/movies", "/search", "/lists", "/friends", "/login", "/register"}
	for _, route := range spaRoutes {
		mux.HandleFunc("GET "+route, func(w http.ResponseWriter, r *http.Request) {
			r.URL.Path = "/"
			serveStatic(w, r)
		})
	}

	// Static files (client app) - from disk in development, embedded otherwise
	mux.HandleFunc("/", serveStatic)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: corsOrigin != "*",
	})

	handler := requestLogger(c.Handler(mux))

	log.Printf("Server starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func serveStatic(w http.ResponseWriter, r *http.Request) {
	staticDir := getEnv("STATIC_DIR", "./web/dist")
	if _, err := os.Stat(staticDir); err == nil {
		// Development mode - serve from disk
		fs := http.FileServer(http.Dir(staticDir))
		addCacheHeaders(fs).ServeHTTP(w, r)
		return
	}

	// Production mode - serve embedded files
	distFS, err := cinelist.GetDistFS()
	if err != nil {
		http.Error(w, "Failed to load app", http.StatusInternalServerError)
		return
	}
	addCacheHeaders(http.FileServer(http.FS(distFS))).ServeHTTP(w, r)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// addCacheHeaders adds appropriate cache headers to prevent browser caching issues
func addCacheHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=31536000") // 1 year for assets
		}

		next.ServeHTTP(w, r)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

// requestLogger logs method, path, status, duration and a request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)

		log.Printf("%s %s %d %s request_id=%s", r.Method, r.URL.Path, lrw.status, time.Since(start), requestID)
	})
}
