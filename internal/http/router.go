package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"mentor-pulse/internal/domain"
	"mentor-pulse/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	pool *pgxpool.Pool,
	jwtServ *service.JWTService,
	userH *UserHandler,
	tutorH *TutorHandler,
	alertH *AlertHandler,
	bookingH *BookingHandler,
	leaderboardH *LeaderboardHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	users := r.Group("/users")
	users.POST("", userH.CreateUser)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)

	authed := r.Group("")
	authed.Use(JWTAuthMiddleware(jwtServ))
	authed.GET("/leaderboard", leaderboardH.Leaderboard)

	learners := authed.Group("")
	learners.Use(RequireRole(domain.RoleLearner))
	learners.POST("/tutor/ask", tutorH.Ask)
	learners.POST("/bookings", bookingH.Create)

	// Confirm/complete validan ademas pertenencia en el servicio; cancel
	// puede hacerlo cualquiera de las dos partes.
	authed.GET("/bookings", bookingH.ListByUser)
	authed.POST("/bookings/:id/cancel", bookingH.Cancel)

	tutors := authed.Group("")
	tutors.Use(RequireRole(domain.RoleTutor))
	tutors.GET("/alerts", alertH.ListUnread)
	tutors.POST("/alerts/:id/read", alertH.MarkRead)
	tutors.POST("/bookings/:id/confirm", bookingH.Confirm)
	tutors.POST("/bookings/:id/complete", bookingH.Complete)

	admins := authed.Group("/admin")
	admins.Use(RequireRole(domain.RoleAdmin))
	admins.GET("/struggle/summary", adminH.StruggleSummary)
	admins.GET("/struggle/topics", adminH.StruggleTopics)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
