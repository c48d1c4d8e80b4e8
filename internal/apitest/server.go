// Package apitest runs an in-process fake of the ODG delivery API for tests.
// It keeps its data in memory, issues real HS256 tokens and answers errors
// in the backend's {"message"} and {"errors":[{"msg"}]} shapes.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/odg-delivery/console/internal/auth"
)

const testSecret = "apitest-secret"

// Server is the fake backend
type Server struct {
	URL string

	router *gin.Engine
	http   *httptest.Server
	signer *auth.Signer
	logger zerolog.Logger

	mu       sync.Mutex
	data     *dataset
	requests []Request
	subs     map[int64][]chan map[string]any
	done     chan struct{}
	closed   bool
}

// Request is a request the fake backend received
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

// Option configures a Server
type Option func(*Server)

// WithLogger logs each request through logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New starts a fake backend seeded with Fixtures. It is closed when the
// test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	signer, err := auth.NewSigner(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	s := &Server{
		signer: signer,
		logger: zerolog.Nop(),
		data:   seed(),
		subs:   make(map[int64][]chan map[string]any),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRouter()
	s.http = httptest.NewServer(s.router)
	s.URL = s.http.URL
	t.Cleanup(s.Close)

	return s
}

// Close ends open event streams and shuts the server down
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.http.Close()
}

// Token mints a valid token for a seeded account
func (s *Server) Token(email string) string {
	s.mu.Lock()
	a := s.data.accountByLogin(email)
	s.mu.Unlock()
	if a == nil {
		return ""
	}

	token, err := s.signer.Sign(a.ID, a.Email, a.role())
	if err != nil {
		panic(err)
	}
	return token
}

// Requests returns a copy of the received requests, oldest first
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request to method and path
func (s *Server) LastRequest(method, path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if r := s.requests[i]; r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Request{}, false
}

// Subscribers returns the number of open event streams for a vendor
func (s *Server) Subscribers(vendorID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[vendorID])
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.TestMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.recordMiddleware())

	// Public auth endpoints
	s.router.POST("/auth/login", s.login)
	s.router.POST("/auth/signup", s.signup)
	s.router.POST("/auth/verify", s.verify)
	s.router.POST("/auth/request-verification", s.requestVerification)
	s.router.POST("/auth/forgot-password", s.forgotPassword)
	s.router.POST("/auth/reset-password", s.resetPassword)

	authed := s.router.Group("")
	authed.Use(s.bearerAuth())
	{
		authed.POST("/auth/select-role", s.selectRole)
		authed.GET("/support/mine", s.mySupport)
		authed.POST("/support", s.sendSupport)

		admin := authed.Group("/admin")
		admin.Use(adminOnly())
		{
			admin.GET("/users", s.listUsers)
			admin.POST("/users/:id/:action", s.userAction)
			admin.GET("/riders/pending", s.pendingRiders)
			admin.POST("/riders/:action", s.riderAction)
			admin.GET("/orders", s.listOrders)
			admin.GET("/orders/active", s.activeOrders)
			admin.GET("/analytics/overview", s.overview)
			admin.GET("/analytics/orders-by-day", s.ordersByDay)
			admin.GET("/settings", s.listSettings)
			admin.POST("/settings", s.setSetting)
			admin.GET("/support/messages", s.supportMessages)
			admin.POST("/campaigns", s.sendCampaign)

			admin.GET("/payouts", s.listPayouts)
			admin.POST("/payouts", s.createPayout)
			admin.POST("/payouts/:id/mark-paid", s.markPayoutPaid)
			admin.GET("/refunds", s.listRefunds)
			admin.POST("/refunds", s.createRefund)
			admin.POST("/refunds/:id/mark-processed", s.markRefundProcessed)
			admin.GET("/fees", s.listFees)
			admin.POST("/fees", s.publishFees)
			admin.POST("/fees/rollback", s.rollbackFees)

			admin.GET("/universities", s.listUniversities)
			admin.POST("/universities", s.createUniversity)
			admin.GET("/campuses", s.listCampuses)
			admin.POST("/campuses", s.createCampus)
			admin.GET("/zones", s.listZones)
			admin.POST("/zones", s.createZone)
		}

		vendors := authed.Group("/vendors")
		{
			vendors.GET("", s.listVendors)
			vendors.POST("/categories", s.createCategory)
			vendors.POST("/profile", s.saveProfile)
			vendors.POST("/bank", s.saveBank)
			vendors.POST("/hours", s.saveHours)
			vendors.POST("/branding", s.saveBranding)
			vendors.POST("/modifier-groups", s.createModifierGroup)
			vendors.POST("/modifier-options", s.createModifierOption)
			vendors.GET("/modifier-options/:groupId", s.listModifierOptions)

			vendor := vendors.Group("/:id")
			vendor.Use(s.vendorAccess())
			{
				vendor.GET("/orders", s.vendorOrders)
				vendor.POST("/orders/:orderId/status", s.updateOrderStatus)
				vendor.GET("/menu", s.listMenu)
				vendor.POST("/menu", s.createMenuItem)
				vendor.PUT("/menu/:itemId", s.updateMenuItem)
				vendor.DELETE("/menu/:itemId", s.deleteMenuItem)
				vendor.GET("/stats", s.vendorStats)
				vendor.GET("/ratings", s.vendorRatings)
				vendor.GET("/categories", s.listCategories)
				vendor.POST("/categories/reorder", s.reorderCategories)
				vendor.DELETE("/categories/:catId", s.deleteCategory)
				vendor.POST("/menu/:itemId/category", s.setItemCategory)
				vendor.GET("/menu/:itemId/modifier-groups", s.itemModifierGroups)
				vendor.POST("/menu/:itemId/modifier-groups", s.assignModifierGroup)
				vendor.DELETE("/menu/:itemId/modifier-groups/:groupId", s.unassignModifierGroup)
				vendor.GET("/profile", s.getProfile)
				vendor.GET("/bank", s.getBank)
				vendor.GET("/hours", s.getHours)
				vendor.GET("/branding", s.getBranding)
				vendor.GET("/modifier-groups", s.listModifierGroups)
				vendor.GET("/earnings", s.vendorEarnings)
				vendor.GET("/transactions", s.vendorTransactions)
				vendor.GET("/events", s.events)
			}
		}
	}
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func respondErrors(c *gin.Context, messages ...string) {
	errs := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, gin.H{"msg": m})
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
}

func respondOK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
