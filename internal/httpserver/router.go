package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"projecthub/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	clientHandler *handler.ClientHandler,
	projectHandler *handler.ProjectHandler,
	memberHandler *handler.MemberHandler,
	taskHandler *handler.TaskHandler,
	userHandler *handler.UserHandler,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(Trace())
	r.Use(RequestLogger(logger))
	r.Use(Metrics())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/users", userHandler.List)

		auth.GET("/clients", clientHandler.List)
		auth.POST("/clients", clientHandler.Create)
		auth.GET("/clients/:id", clientHandler.Get)
		auth.PUT("/clients/:id", clientHandler.Update)
		auth.DELETE("/clients/:id", clientHandler.Delete)
		auth.GET("/clients/:id/projects", clientHandler.ListProjects)

		auth.GET("/projects", projectHandler.List)
		auth.POST("/projects", projectHandler.Create)
		auth.GET("/projects/:id", projectHandler.Get)
		auth.PUT("/projects/:id", projectHandler.Update)
		auth.DELETE("/projects/:id", projectHandler.Delete)
		auth.GET("/projects/:id/tasks", projectHandler.ListTasks)
		auth.POST("/projects/:id/tasks", projectHandler.CreateTask)

		auth.GET("/projects/:id/members", memberHandler.List)
		auth.POST("/projects/:id/members", memberHandler.Add)
		auth.PUT("/projects/:id/members/:memberID", memberHandler.UpdateRole)
		auth.DELETE("/projects/:id/members/:memberID", memberHandler.Remove)

		auth.GET("/tasks", taskHandler.List)
		auth.POST("/tasks", taskHandler.Create)
		auth.GET("/tasks/:id", taskHandler.Get)
		auth.PATCH("/tasks/:id", taskHandler.Update)
		auth.POST("/tasks/:id/complete", taskHandler.Complete)
		auth.DELETE("/tasks/:id", taskHandler.Delete)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
