package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/runeberget/krets/internal/auth"
	"github.com/runeberget/krets/internal/bucket"
	"github.com/runeberget/krets/internal/email"
	"github.com/runeberget/krets/internal/handler"
	"github.com/runeberget/krets/internal/middleware"
	"github.com/runeberget/krets/internal/store"
	ws "github.com/runeberget/krets/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	links       *auth.MagicLinkManager
	sessions    *auth.SessionManager
	authH       *handler.AuthHandler
	memberH     *handler.MemberHandler
	meetingH    *handler.MeetingHandler
	attendanceH *handler.AttendanceHandler
	profileH    *handler.ProfileHandler
	imageH      *handler.ImageHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, sender email.Sender, images *bucket.Client, baseURL string, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	meetingStore := store.NewMeetingStore(db)
	attendanceStore := store.NewAttendanceStore(db)
	roleStore := store.NewRoleStore(db)

	links := auth.NewMagicLinkManager(userStore, magicLinkStore, sender, baseURL, logger.With("component", "magic_link"))
	sessions := auth.NewSessionManager(sessionStore, logger.With("component", "session"))

	return &Server{
		db:          db,
		hub:         hub,
		links:       links,
		sessions:    sessions,
		authH:       handler.NewAuthHandler(links, sessions, logger.With("component", "auth")),
		memberH:     handler.NewMemberHandler(userStore, logger.With("component", "member")),
		meetingH:    handler.NewMeetingHandler(meetingStore, hub, logger.With("component", "meeting")),
		attendanceH: handler.NewAttendanceHandler(attendanceStore, meetingStore, userStore, hub, logger.With("component", "attendance")),
		profileH:    handler.NewProfileHandler(userStore, roleStore, attendanceStore, hub, logger.With("component", "profile")),
		imageH:      handler.NewImageHandler(images, userStore, hub, logger.With("component", "image")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// MagicLinks returns the magic link manager for cleanup tasks.
func (s *Server) MagicLinks() *auth.MagicLinkManager {
	return s.links
}

// Sessions returns the session manager for cleanup tasks.
func (s *Server) Sessions() *auth.SessionManager {
	return s.sessions
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /magic-link", s.rateLimitedHandler(s.authH.MagicLink))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — require an authenticated identity
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/", middleware.RequireAuth(protectedMux))

	// Authenticate resolves the cookie for every request; RequireAuth only
	// guards the protected subtree.
	h := middleware.Authenticate(s.sessions)(outerMux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	mux.HandleFunc("GET /api/members", s.memberH.List)

	mux.HandleFunc("POST /api/meetings", s.meetingH.Create)
	mux.HandleFunc("GET /api/meetings", s.meetingH.List)
	mux.HandleFunc("GET /api/meetings/next", s.meetingH.NextUpcoming)
	mux.HandleFunc("GET /api/meetings/{id}", s.meetingH.Get)

	mux.HandleFunc("PUT /api/attendance", s.attendanceH.Set)
	mux.HandleFunc("GET /api/attendance", s.attendanceH.Grid)
	mux.HandleFunc("GET /api/attendance/statuses", s.attendanceH.ListStatuses)

	mux.HandleFunc("GET /api/profiles/{id}", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("GET /api/roles", s.profileH.ListRoles)

	mux.HandleFunc("POST /api/profile/image", s.imageH.Upload)
	mux.HandleFunc("GET /images/{key}", s.imageH.Serve)

	mux.Handle("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
