package main

import (
	"github.com/Developer-Square/Park254-Backend/internal/bookings/availability"
	bookinghandler "github.com/Developer-Square/Park254-Backend/internal/bookings/handler"
	"github.com/Developer-Square/Park254-Backend/internal/bookings/lock"
	bookingrepo "github.com/Developer-Square/Park254-Backend/internal/bookings/repository"
	bookingservice "github.com/Developer-Square/Park254-Backend/internal/bookings/service"
	bookingvalidator "github.com/Developer-Square/Park254-Backend/internal/bookings/validator"
	capacityrepo "github.com/Developer-Square/Park254-Backend/internal/capacity/repository"
	capacityservice "github.com/Developer-Square/Park254-Backend/internal/capacity/service"
	"github.com/Developer-Square/Park254-Backend/internal/events"
	lothandler "github.com/Developer-Square/Park254-Backend/internal/parkinglots/handler"
	lotrepo "github.com/Developer-Square/Park254-Backend/internal/parkinglots/repository"
	lotservice "github.com/Developer-Square/Park254-Backend/internal/parkinglots/service"
	lotvalidator "github.com/Developer-Square/Park254-Backend/internal/parkinglots/validator"
	ratinghandler "github.com/Developer-Square/Park254-Backend/internal/ratings/handler"
	ratingrepo "github.com/Developer-Square/Park254-Backend/internal/ratings/repository"
	ratingservice "github.com/Developer-Square/Park254-Backend/internal/ratings/service"
	ratingvalidator "github.com/Developer-Square/Park254-Backend/internal/ratings/validator"
	userrepo "github.com/Developer-Square/Park254-Backend/internal/users/repository"
	userservice "github.com/Developer-Square/Park254-Backend/internal/users/service"
	vehiclehandler "github.com/Developer-Square/Park254-Backend/internal/vehicles/handler"
	vehiclerepo "github.com/Developer-Square/Park254-Backend/internal/vehicles/repository"
	vehicleservice "github.com/Developer-Square/Park254-Backend/internal/vehicles/service"
	vehiclevalidator "github.com/Developer-Square/Park254-Backend/internal/vehicles/validator"
	"github.com/Developer-Square/Park254-Backend/pkg/app"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	"github.com/Developer-Square/Park254-Backend/pkg/contracts"
	"github.com/Developer-Square/Park254-Backend/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "park254-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.UsesRedisLocks() {
		cfg.SetRedis()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	publisher, err := events.NewPublisher(cfg, ServiceName, metrics.NewEventMetrics(registry))
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	cfg.Log.Info("Starting Park254 API")
	serverApp := app.NewApplication(cfg, registry)
	serverApp.SetApp(initHandlers(cfg, publisher)...)
	serverApp.OnShutdown(publisher.Close)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	lots := lotrepo.NewMongoParkingLotRepository(cfg)
	bookings := bookingrepo.NewMongoBookingRepository(cfg)
	jobs := capacityrepo.NewMongoJobRepository(cfg)
	users := userservice.NewUserService(userrepo.NewMongoUserRepository(cfg))

	bookingService := bookingservice.NewBookingService(bookingservice.Params{
		Repo:      bookings,
		Validator: bookingvalidator.NewBookingValidator(cfg.Log),
		Evaluator: availability.NewEvaluator(bookings),
		Lots:      lots,
		Users:     users,
		Capacity:  capacityservice.NewAdjuster(jobs, lots, cfg.Log),
		Locker:    lock.New(cfg),
		Publisher: publisher,
		Config:    cfg,
	})
	lotService := lotservice.NewParkingLotService(lots, lotvalidator.NewParkingLotValidator(cfg.Log), cfg)
	ratingService := ratingservice.NewRatingService(
		ratingrepo.NewMongoRatingRepository(cfg),
		lots,
		ratingvalidator.NewRatingValidator(),
		cfg,
	)
	vehicleService := vehicleservice.NewVehicleService(
		vehiclerepo.NewMongoVehicleRepository(cfg),
		users,
		vehiclevalidator.NewVehicleValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.LockBackend,
		"events_enabled", cfg.EventsEnabled,
	)
	return []contracts.Handler{
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		lothandler.NewParkingLotHandler(lotService, cfg.Log),
		ratinghandler.NewRatingHandler(ratingService, cfg.Log),
		vehiclehandler.NewVehicleHandler(vehicleService, cfg.Log),
	}
}
