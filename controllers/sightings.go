package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/database"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/geo"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/middleware"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/query"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/services"
)

type SightingInput struct {
	Latitude  *float64       `json:"latitude" binding:"required"`
	Longitude *float64       `json:"longitude" binding:"required"`
	ImageID   string         `json:"image_id"`
	Species   models.Species `json:"species"`
}

// CreateSighting logs an observation. The server computes the geohash from
// the coordinates, assigns the id and timestamp, and bumps the reporter's
// sighting count. speciesClient may be nil when no identification API is
// configured.
func CreateSighting(sightings *database.SightingStore, rankings *database.RankingStore, speciesClient *services.SpeciesClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SightingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lat, lng := *input.Latitude, *input.Longitude
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
			return
		}

		species := input.Species
		if speciesClient != nil && input.ImageID != "" {
			species = speciesClient.Identify(c.Request.Context(), input.ImageID, species)
		}
		if species.Taxonomy == nil {
			species.Taxonomy = map[string]*string{}
		}

		userID := c.GetString(middleware.UserIDKey)
		sighting := models.Sighting{
			ID:              uuid.NewString(),
			UserID:          userID,
			Latitude:        lat,
			Longitude:       lng,
			Geohash:         geo.Encode(lat, lng),
			ImageID:         input.ImageID,
			SpeciesLabel:    species.Label,
			SpeciesTaxonomy: species.Taxonomy,
			Timestamp:       time.Now().UTC(),
		}

		if err := sightings.Create(c.Request.Context(), &sighting); err != nil {
			log.Printf("sightings: saving for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save sighting"})
			return
		}

		if err := rankings.IncrementSpots(c.Request.Context(), userID); err != nil {
			// The sighting itself is saved; only the counter lagged.
			log.Printf("sightings: incrementing spot count for user %s: %v", userID, err)
		}

		c.JSON(http.StatusCreated, sighting)
	}
}

// NearbySightings answers "what was spotted within this radius of here"
// through the geohash-bounded proximity query.
func NearbySightings(sightings *database.SightingStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
			return
		}

		radius := 1000.0
		if raw := c.Query("radius"); raw != "" {
			r, err := strconv.ParseFloat(raw, 64)
			if err != nil || r <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be a positive number of meters"})
				return
			}
			radius = r
		}

		results, err := query.NearbySightings(c.Request.Context(), sightings, geo.Point{Lat: lat, Lng: lng}, radius)
		if err != nil {
			log.Printf("sightings: nearby query at (%f, %f): %v", lat, lng, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "nearby query failed"})
			return
		}
		if results == nil {
			results = []models.Sighting{}
		}

		c.JSON(http.StatusOK, gin.H{"sightings": results})
	}
}

type StepsInput struct {
	Steps *int64 `json:"steps" binding:"required"`
}

// ReportSteps adds a step-counter delta to the caller's total.
func ReportSteps(rankings *database.RankingStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input StepsInput
		if err := c.ShouldBindJSON(&input); err != nil || *input.Steps < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "steps must be a non-negative number"})
			return
		}

		userID := c.GetString(middleware.UserIDKey)
		if err := rankings.AddSteps(c.Request.Context(), userID, *input.Steps); err != nil {
			log.Printf("sightings: adding steps for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record steps"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "steps recorded"})
	}
}
