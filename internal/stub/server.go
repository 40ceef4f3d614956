package stub

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/labadmin/internal/model"
	"github.com/jwalitptl/labadmin/pkg/httputil"
	"github.com/jwalitptl/labadmin/pkg/logger"
)

const csrfCookie = "XSRF-TOKEN"
const csrfHeader = "X-XSRF-TOKEN"

// listShape picks the list response envelope per resource. The real
// back office grew three shapes over time; the stub keeps all of them
// so clients exercise their normalization against each one.
type listShape int

const (
	shapeData  listShape = iota // {"data": [...]}
	shapeNamed                  // {"data": {"<resource>": [...]}}
	shapeRaw                    // [...]
)

var listShapes = map[string]listShape{
	"members":      shapeData,
	"publications": shapeNamed,
	"partners":     shapeRaw,
	"axes":         shapeNamed,
	"gallery":      shapeData,
	"messages":     shapeData,
}

// Server is the fixture-backed stand-in for the lab's back office API.
type Server struct {
	store  *Store
	token  string
	log    *logger.Logger
	engine *gin.Engine
}

// Option configures the server.
type Option func(*Server)

// WithToken requires the given bearer token on /api/admin routes.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithLogger sets the request logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Server) { s.log = log }
}

// NewServer builds the gin engine with all routes registered.
func NewServer(opts ...Option) *Server {
	s := &Server{
		store: NewStore(),
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLog())

	engine.GET("/sanctum/csrf-cookie", s.issueCSRF)

	admin := engine.Group("/api/admin")
	admin.Use(s.auth(), s.csrf())
	for _, res := range model.Catalog {
		s.registerResource(admin, res)
	}
	admin.GET("/settings/:page", s.getSettings)
	admin.POST("/settings/:page", s.saveSettings)

	s.engine = engine
	return s
}

// Engine exposes the router for httptest servers.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Store exposes the fixture store for test setup.
func (s *Server) Store() *Store { return s.store }

// Run serves on the given port until the listener fails.
func (s *Server) Run(port int) error {
	s.log.Info("stub API listening", "port", port)
	return s.engine.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) registerResource(rg *gin.RouterGroup, res model.Resource) {
	name := res.Name
	rg.GET("/"+name, func(c *gin.Context) { s.list(c, name) })
	rg.GET("/"+name+"/:id", func(c *gin.Context) { s.get(c, name) })
	rg.POST("/"+name, func(c *gin.Context) { s.create(c, name) })
	rg.PUT("/"+name+"/:id", func(c *gin.Context) { s.update(c, name) })
	rg.DELETE("/"+name+"/:id", func(c *gin.Context) { s.remove(c, name) })
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

// issueCSRF sets the session's CSRF cookie. Calling it again is
// harmless; the cookie is simply reissued.
func (s *Server) issueCSRF(c *gin.Context) {
	c.SetCookie(csrfCookie, uuid.NewString(), 3600, "/", "", false, false)
	c.Status(http.StatusNoContent)
}

// csrf rejects mutating requests whose token header does not match the
// session cookie.
func (s *Server) csrf() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		cookie, err := c.Cookie(csrfCookie)
		if err != nil || cookie == "" || c.GetHeader(csrfHeader) != cookie {
			httputil.RespondWithError(c, http.StatusForbidden, "CSRF token mismatch")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+s.token {
			httputil.RespondWithError(c, http.StatusUnauthorized, "unauthenticated")
			c.Abort()
			return
		}
		c.Next()
	}
}
