package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/realvia/estate-service/internal/app"
	"github.com/realvia/estate-service/internal/billing"
	"github.com/realvia/estate-service/internal/config"
	"github.com/realvia/estate-service/internal/controllers"
	"github.com/realvia/estate-service/internal/repositories"
	"github.com/realvia/estate-service/internal/routes"
	"github.com/realvia/estate-service/internal/services"
	"github.com/realvia/estate-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize estate-service:", err)
	}
	defer application.Close()

	propRepo := repositories.NewPropertyRepository(application.DB)
	offerRepo := repositories.NewPropertyOfferRepository(application.DB)
	typeRepo := repositories.NewPropertyTypeRepository(application.DB)
	tagRepo := repositories.NewPropertyTagRepository(application.DB)

	invoicer, err := billing.NewClient(cfg.BillingAPIURL, cfg.BillingAPIKey, cfg.BillingMaxRetries, config.BillingRetryInitial)
	if err != nil {
		utils.Logger.Fatal("Failed to create billing client:", err)
	}

	propertyService := services.NewPropertyService(propRepo, offerRepo, typeRepo, tagRepo, invoicer, services.SystemClock)
	offerService := services.NewOfferService(propRepo, offerRepo, services.SystemClock)
	catalogService := services.NewCatalogService(typeRepo, tagRepo)
	expiryService := services.NewOfferExpiryService(propRepo, offerRepo, offerService, services.SystemClock)

	if cfg.SeedDemoData {
		if err := app.SeedDemoData(context.Background(), catalogService, propertyService); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed demo data")
		}
	}

	propertiesController := controllers.NewPropertiesController(propertyService)
	offersController := controllers.NewOffersController(offerService)
	catalogController := controllers.NewCatalogController(catalogService)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	router.HandleFunc(routes.PropertiesBase, propertiesController.CreatePropertyHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertiesBase, propertiesController.ListPropertiesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertiesSoldBatch, propertiesController.MarkSoldBatchHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertiesCancelBatch, propertiesController.CancelBatchHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertyByID, propertiesController.GetPropertyHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyByID, propertiesController.UpdatePropertyHandler).Methods(http.MethodPatch, http.MethodPut)
	router.HandleFunc(routes.PropertyByID, propertiesController.DeletePropertyHandler).Methods(http.MethodDelete)
	router.HandleFunc(routes.PropertyDuplicate, propertiesController.DuplicatePropertyHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertySold, propertiesController.MarkSoldHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertyCancel, propertiesController.CancelPropertyHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertyArchive, propertiesController.ArchivePropertyHandler).Methods(http.MethodPost)

	router.HandleFunc(routes.OffersBase, offersController.CreateOfferHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.OffersByProperty, offersController.ListOffersHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.OffersAccept, offersController.AcceptOffersHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.OffersRefuse, offersController.RefuseOfferHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.OffersDeadline, offersController.UpdateDeadlineHandler).Methods(http.MethodPatch, http.MethodPut)

	router.HandleFunc(routes.PropertyTypes, catalogController.CreateTypeHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertyTypes, catalogController.ListTypesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyTypeByID, catalogController.DeleteTypeHandler).Methods(http.MethodDelete)
	router.HandleFunc(routes.PropertyTags, catalogController.CreateTagHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertyTags, catalogController.ListTagsHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyTagByID, catalogController.DeleteTagHandler).Methods(http.MethodDelete)

	c := cron.New()
	_, cronErr := c.AddFunc(cfg.OfferExpiryCronSpec, func() {
		if e := expiryService.RunExpirySweep(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Offer expiry sweep failed")
		}
	})
	if cronErr != nil {
		utils.Logger.WithError(cronErr).Fatal("Failed to schedule offer expiry cron")
	}
	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.AppUrl},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-User-ID"},
	})

	utils.Logger.Infof("estate-service listening on :%s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Server stopped:", err)
	}
}
