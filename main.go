package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/auth"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/config"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/controllers"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/database"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/middleware"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/services"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/store"
)

func main() {
	cfg := config.Load()

	database.Connect(cfg.DatabaseDSN)

	var blob store.Blob
	switch cfg.StorageBackend {
	case "minio":
		services.InitMinio(cfg)
		blob = services.NewMinioBlob(cfg.MinioBucket)
	case "disk":
		diskBlob, err := store.NewDiskBlob(cfg.StorageDir)
		if err != nil {
			log.Fatalf("creating storage directory: %v", err)
		}
		blob = diskBlob
	default:
		log.Fatalf("unknown storage backend %q", cfg.StorageBackend)
	}
	contentStore := store.New(database.DB, blob)

	provider := auth.NewJWTProvider([]byte(cfg.JWTSecret))
	sightings := database.NewSightingStore(database.DB)
	rankings := database.NewRankingStore(database.DB)

	var speciesClient *services.SpeciesClient
	if cfg.SpeciesAPIURL != "" {
		speciesClient = services.NewSpeciesClient(cfg.SpeciesAPIURL, cfg.SpeciesAPITimeout)
	}

	r := gin.Default()

	r.GET("/health", controllers.Health)

	r.POST("/auth/signup", controllers.Signup(cfg))
	r.POST("/auth/login", controllers.Login(cfg))

	// Sighting photos are public in this deployment; only mutation
	// requires a verified caller.
	r.GET("/images/:id", controllers.GetImage(contentStore))
	r.GET("/images/:id/thumb", controllers.GetImageThumb(contentStore))
	r.GET("/sightings/nearby", controllers.NearbySightings(sightings))
	r.GET("/rankings", controllers.Leaderboard(rankings))
	r.GET("/rankings/search", controllers.SearchRankings(rankings))

	authed := r.Group("/", middleware.RequireAuth(provider))
	authed.POST("/images", controllers.UploadImage(contentStore))
	authed.DELETE("/images/:id", controllers.DeleteImage(contentStore))
	authed.POST("/sightings", controllers.CreateSighting(sightings, rankings, speciesClient))
	authed.POST("/users/steps", controllers.ReportSteps(rankings))

	log.Printf("server listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
