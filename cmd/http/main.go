package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/delivery/http/controllers"
	"citamed-service/internal/app/delivery/http/middlewares"
	"citamed-service/internal/app/delivery/http/routers"
	"citamed-service/internal/app/drivers/database"
	"citamed-service/internal/app/drivers/logger"
	"citamed-service/internal/app/drivers/messaging"
	"citamed-service/internal/app/services/core/availability"
	"citamed-service/internal/app/services/core/blocks"
	"citamed-service/internal/app/services/core/booking"
	"citamed-service/internal/app/services/core/calendar"
	"citamed-service/internal/app/services/core/capacity"
	"citamed-service/internal/app/services/core/scheduling"
	"citamed-service/internal/app/services/shared/callback"
	"citamed-service/internal/app/services/shared/jobqueue"
	"citamed-service/internal/app/services/shared/jwtmanager"
	"citamed-service/internal/app/services/shared/locker"
	"citamed-service/internal/app/services/shared/notification"
	"citamed-service/internal/app/services/shared/ratelimiter"
	redisrepo "citamed-service/internal/app/services/shared/redis"
	"citamed-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	logrusLogger := logger.NewLogrusLogger(internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	mongoClient := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitConn := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		Mongo:          mongoClient,
		Redis:          redisClient,
		Logger:         zapLogger,
		RabbitMQ:       rabbitConn,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := bootstrapTheApp(workerCtx, bootstrap, logrusLogger); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests already received by the server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown finished with error: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapTheApp(ctx context.Context, bootstrap *config.Bootstrap, logrusLogger *logrus.Logger) error {
	// Shared services
	redisRepository := redisrepo.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, bootstrap.Logger)
	jwtManager, err := jwtmanager.NewJWTManager(bootstrap.InternalConfig, bootstrap.Logger)
	if err != nil {
		return err
	}
	hostLimiter := ratelimiter.NewResourceLimiter(redisRepository, bootstrap.Logger)
	notificationSender := notification.NewHTTPNotificationSender(bootstrap.Logger, bootstrap.InternalConfig, jwtManager)

	// Queues: one channel and queue pair per job class
	searchQueue, err := jobqueue.NewService(bootstrap.RabbitMQ, bootstrap.Logger, constvars.SearchQueueName, bootstrap.InternalConfig.Scheduling.MaxQueue)
	if err != nil {
		return err
	}
	bookingQueue, err := jobqueue.NewService(bootstrap.RabbitMQ, bootstrap.Logger, constvars.BookingQueueName, 1)
	if err != nil {
		return err
	}
	callbackQueue, err := jobqueue.NewService(bootstrap.RabbitMQ, bootstrap.Logger, constvars.CallbackQueueName, bootstrap.InternalConfig.Scheduling.MaxQueue)
	if err != nil {
		return err
	}

	// Tenant-aware store access
	tenantRegistry := calendar.NewTenantMongoRegistry(bootstrap.Mongo, bootstrap.InternalConfig)
	calendarSource := calendar.NewCalendarMongoRepository(bootstrap.Mongo, tenantRegistry)
	bookingStore := calendar.NewBookingMongoRepository(bootstrap.Mongo, tenantRegistry)
	procedureRepository := calendar.NewProcedureMongoRepository(bootstrap.Mongo, tenantRegistry)

	// Core usecases
	slotFinder := availability.NewSlotFinderUsecase(calendarSource, procedureRepository, redisRepository, bootstrap.InternalConfig, bootstrap.Logger)
	capacityLimiter := capacity.NewCapacityLimiterUsecase(procedureRepository, bookingStore, bootstrap.Logger)
	bookingCoordinator := booking.NewBookingCoordinatorUsecase(calendarSource, bookingStore, capacityLimiter, lockerService, notificationSender, bootstrap.InternalConfig, bootstrap.Logger)
	blockResolver := blocks.NewBlockResolverUsecase(bookingStore, calendarSource, bootstrap.Logger)
	schedulingUsecase := scheduling.NewSchedulingUsecase(searchQueue, bookingQueue, bootstrap.Logger)

	// Workers
	dispatcher := callback.NewDispatcher(bootstrap.Logger, bootstrap.InternalConfig, redisRepository, jwtManager, hostLimiter)
	searchWorker := scheduling.NewSearchWorker(bootstrap.Logger, bootstrap.InternalConfig, searchQueue, callbackQueue, slotFinder)
	bookingWorker := scheduling.NewBookingWorker(bootstrap.Logger, bootstrap.InternalConfig, bookingQueue, callbackQueue, bookingCoordinator)
	callbackWorker := scheduling.NewCallbackWorker(bootstrap.Logger, bootstrap.InternalConfig, callbackQueue, dispatcher)
	snapshotWorker := capacity.NewWorker(bootstrap.Logger, bootstrap.InternalConfig, lockerService, redisRepository, tenantRegistry, procedureRepository, bookingStore)

	bootstrap.SearchWorkerStop = searchWorker.Start(ctx)
	bootstrap.BookingWorkerStop = bookingWorker.Start(ctx)
	bootstrap.CallbackWorkerStop = callbackWorker.Start(ctx)
	snapshotWorker.Start(ctx)
	bootstrap.SnapshotWorkerStop = snapshotWorker.Stop

	// HTTP delivery
	schedulingController := controllers.NewSchedulingController(bootstrap.Logger, schedulingUsecase, blockResolver)
	httpMiddlewares := &middlewares.Middlewares{
		Log:            bootstrap.Logger,
		Tenants:        tenantRegistry,
		InternalConfig: bootstrap.InternalConfig,
	}

	// Plain request log alongside the structured one. Registered before
	// SetupRoutes: chi requires every middleware ahead of the first route.
	bootstrap.Router.Use(httpMiddlewares.RequestLogger(bootstrap.InternalConfig.App, logrusLogger))
	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, httpMiddlewares, schedulingController)

	return nil
}
