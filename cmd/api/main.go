package main

import (
	"go.uber.org/zap"

	"projecthub/internal/config"
	"projecthub/internal/handler"
	"projecthub/internal/httpserver"
	"projecthub/internal/repository"
	"projecthub/internal/service/auth"
	"projecthub/internal/service/client"
	"projecthub/internal/service/policy"
	"projecthub/internal/service/project"
	"projecthub/internal/service/task"
	"projecthub/internal/service/visibility"
	"projecthub/pkg/db"
	"projecthub/pkg/logger"
	"projecthub/pkg/mq"
	redisclient "projecthub/pkg/redis"
)

func main() {
	// Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis (visibility cache; optional)
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ Publisher (optional)
	var publisher *mq.Publisher
	if cfg.MQ.URL != "" {
		publisher, err = mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Warn("MQ publisher unavailable, events disabled", zap.Error(err))
		}
		defer publisher.Close()
	}

	// Init Repositories
	txManager := repository.NewTxManager(dbConn)
	userRepo := repository.NewUserRepository(dbConn)
	clientRepo := repository.NewClientRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	membershipRepo := repository.NewMembershipRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)

	// Init Services
	policyEval := policy.NewEvaluator(membershipRepo, log)
	visibilityService := visibility.NewService(membershipRepo, projectRepo, clientRepo, taskRepo, rdb, log)
	authService := auth.NewService(userRepo, cfg.JWT.Secret)
	clientService := client.NewService(clientRepo, policyEval, visibilityService, log)
	projectService := project.NewService(projectRepo, membershipRepo, txManager, policyEval, visibilityService, publisher, log)
	taskService := task.NewService(taskRepo, txManager, policyEval, visibilityService, publisher, log)

	// Init Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	clientHandler := handler.NewClientHandler(clientService, projectService, log)
	projectHandler := handler.NewProjectHandler(projectService, taskService, log)
	memberHandler := handler.NewMemberHandler(projectService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	userHandler := handler.NewUserHandler(userRepo, log)

	// Router
	router := httpserver.NewRouter(
		authHandler,
		clientHandler,
		projectHandler,
		memberHandler,
		taskHandler,
		userHandler,
		cfg.JWT.Secret,
		log,
		dbConn,
	)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
