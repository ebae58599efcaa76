package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/models"
	"github.com/Sk4rKr0w/wildlife-spotter-sub000/query"
)

// SightingStore is the gorm-backed sighting source for the proximity
// protocol, plus the write side for new sightings.
type SightingStore struct {
	db *gorm.DB
}

func NewSightingStore(db *gorm.DB) *SightingStore {
	return &SightingStore{db: db}
}

func (s *SightingStore) Create(ctx context.Context, sighting *models.Sighting) error {
	return s.db.WithContext(ctx).Create(sighting).Error
}

func (s *SightingStore) SightingsInGeohashRange(ctx context.Context, start, end string) ([]models.Sighting, error) {
	var sightings []models.Sighting
	err := s.db.WithContext(ctx).
		Where("geohash >= ? AND geohash <= ?", start, end).
		Order("geohash").
		Find(&sightings).Error
	return sightings, err
}

// RankingStore is the gorm-backed ranking source for the pagination
// protocols, plus the atomic counters behind the leaderboard.
type RankingStore struct {
	db *gorm.DB
}

func NewRankingStore(db *gorm.DB) *RankingStore {
	return &RankingStore{db: db}
}

const rankingColumns = "id, username, total_spots, total_steps"

func (r *RankingStore) TopUsers(ctx context.Context, after *query.RankCursor, limit int) ([]models.RankingEntry, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Select(rankingColumns).
		Order("total_spots DESC, id DESC").
		Limit(limit)
	if after != nil {
		q = q.Where("total_spots < ? OR (total_spots = ? AND id < ?)",
			after.TotalSpots, after.TotalSpots, after.ID)
	}
	var entries []models.RankingEntry
	err := q.Find(&entries).Error
	return entries, err
}

func (r *RankingStore) UsersAfterName(ctx context.Context, afterUsername string, limit int) ([]models.RankingEntry, error) {
	var entries []models.RankingEntry
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select(rankingColumns).
		Where("username > ?", afterUsername).
		Order("username ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *RankingStore) CountUsersWithMoreSpots(ctx context.Context, spots int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("total_spots > ?", spots).
		Count(&count).Error
	return count, err
}

// IncrementSpots bumps a user's sighting count by one, atomically in the
// database rather than read-modify-write in the app.
func (r *RankingStore) IncrementSpots(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_spots", gorm.Expr("total_spots + ?", 1)).Error
}

// AddSteps adds a reported step delta to a user's total, atomically.
func (r *RankingStore) AddSteps(ctx context.Context, userID string, steps int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_steps", gorm.Expr("total_steps + ?", steps)).Error
}
