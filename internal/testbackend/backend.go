// Package testbackend is an in-process recruitment API used by integration
// tests. It speaks the same wire format as the real backend: OAuth2 password
// login, bearer tokens and {"detail": ...} error bodies.
package testbackend

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hireboard-dev/hireboard/internal/models"
)

const defaultTokenTTL = 30 * time.Minute

// Backend represents the test HTTP server state
type Backend struct {
	router    *gin.Engine
	db        *gorm.DB
	issuer    *issuer
	validator *validator.Validate
	logger    zerolog.Logger
	origins   []string

	mu          sync.Mutex
	faultStatus int
	faultDetail string
}

// Option configures a Backend
type Option func(*Backend)

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.issuer.setTTL(ttl)
	}
}

// WithCORSOrigins sets the origins allowed by the CORS middleware
func WithCORSOrigins(origins ...string) Option {
	return func(b *Backend) {
		b.origins = origins
	}
}

// New creates a backend with its own in-memory database
func New(opts ...Option) (*Backend, error) {
	db, err := initDatabase()
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.User{}, &models.Job{}, &models.Resume{}, &models.Tag{}, &models.Match{}, &models.Plan{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	b := &Backend{
		db:        db,
		issuer:    newIssuer(ulid.Make().String(), defaultTokenTTL),
		validator: validator.New(),
		logger:    zerolog.Nop(),
		origins:   []string{"http://localhost:3000", "http://localhost:5173"},
	}
	for _, opt := range opts {
		opt(b)
	}

	b.setupRouter()
	return b, nil
}

// initDatabase opens a private in-memory SQLite database
func initDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", ulid.Make().String())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// The in-memory database lives as long as one connection stays open
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.Exec("PRAGMA foreign_keys=1").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// setupRouter configures the Gin router with the recruitment API routes
func (b *Backend) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	b.router = gin.New()
	b.router.Use(gin.Recovery())
	b.router.Use(b.loggingMiddleware())

	// CORS middleware
	b.router.Use(cors.New(cors.Config{
		AllowOrigins:     b.origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	b.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Public auth endpoints
	b.router.POST("/auth/login", b.login)
	b.router.POST("/auth/register", b.register)

	api := b.router.Group("")
	api.Use(b.jwtAuthMiddleware(), b.faultMiddleware())
	{
		api.GET("/auth/me", b.getCurrentUser)
		api.PUT("/auth/me", b.updateCurrentUser)

		users := api.Group("/auth/users")
		users.Use(b.adminOnlyMiddleware())
		{
			users.GET("", b.listUsers)
			users.POST("", b.createUser)
			users.GET("/:id", b.getUser)
			users.PUT("/:id", b.updateUser)
			users.DELETE("/:id", b.deleteUser)
		}

		api.GET("/jobs", b.listJobs)
		api.POST("/jobs", b.createJob)
		api.POST("/jobs/upload", b.uploadJob)
		api.POST("/jobs/parse", b.parseJob)
		api.GET("/jobs/:id", b.getJob)
		api.PUT("/jobs/:id", b.updateJob)
		api.DELETE("/jobs/:id", b.deleteJob)

		api.GET("/resumes", b.listResumes)
		api.POST("/resumes", b.createResume)
		api.GET("/resumes/search", b.searchResumes)
		api.POST("/resumes/upload", b.uploadResume)
		api.POST("/resumes/batch-upload", b.batchUploadResumes)
		api.GET("/resumes/:id", b.getResume)
		api.PUT("/resumes/:id", b.updateResume)
		api.DELETE("/resumes/:id", b.deleteResume)

		api.GET("/matches", b.listMatches)
		api.POST("/matches", b.createMatch)
		api.POST("/matches/batch", b.batchCreateMatches)
		api.GET("/matches/best-for-job/:id", b.bestForJob)
		api.GET("/matches/best-for-resume/:id", b.bestForResume)

		api.GET("/plans", b.listPlans)
		api.POST("/plans", b.createPlan)
		api.POST("/plans/generate", b.generatePlan)
		api.GET("/plans/:id", b.getPlan)
		api.PUT("/plans/:id", b.updatePlan)
		api.GET("/plans/:id/export", b.exportPlan)
		api.DELETE("/plans/:id", b.deletePlan)
	}
}

// Handler returns the HTTP handler, for httptest.NewServer
func (b *Backend) Handler() http.Handler {
	return b.router
}

// DB exposes the database for seeding and assertions
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Close releases the database
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateUser seeds an account
func (b *Backend) CreateUser(username, password string, isAdmin bool) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       username,
		Email:          username + "@example.com",
		IsActive:       true,
		IsAdmin:        isAdmin,
		HashedPassword: hash,
	}
	if err := b.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// IssueToken returns a valid token for user, as a login would
func (b *Backend) IssueToken(user *models.User) (string, error) {
	return b.issuer.GenerateToken(user.ID, user.IsAdmin)
}

// RevokeAllTokens rotates the signing secret so every issued token is rejected
func (b *Backend) RevokeAllTokens() {
	b.issuer.rotate(ulid.Make().String())
}

// FailAuthenticated makes every authenticated endpoint answer status with
// detail; status 0 restores normal behavior
func (b *Backend) FailAuthenticated(status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faultStatus = status
	b.faultDetail = detail
}
