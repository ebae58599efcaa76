package models

import (
	"encoding/json"
	"time"
)

// Species is the normalized shape of the species field. Upstream sources
// emit either a bare label string or a structured object; UnmarshalJSON
// folds both into this one representation so nothing downstream has to
// branch on the shape again.
type Species struct {
	Label    string             `json:"label"`
	Taxonomy map[string]*string `json:"taxonomy"`
}

func (s *Species) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		s.Label = label
		s.Taxonomy = map[string]*string{}
		return nil
	}

	type structured Species
	var obj structured
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Label = obj.Label
	s.Taxonomy = obj.Taxonomy
	if s.Taxonomy == nil {
		s.Taxonomy = map[string]*string{}
	}
	return nil
}

// Sighting is one logged animal observation. Geohash is always recomputed
// from (Latitude, Longitude) with the same precision so the range queries
// built over it stay correct.
type Sighting struct {
	ID        string  `gorm:"primaryKey;type:text" json:"id"`
	UserID    string  `gorm:"index;not null" json:"user_id"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	Geohash   string  `gorm:"index;not null" json:"geohash"`
	ImageID   string  `json:"image_id,omitempty"` // content-store reference, may be empty

	SpeciesLabel    string             `json:"species_label"`
	SpeciesTaxonomy map[string]*string `gorm:"serializer:json" json:"species_taxonomy"`

	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// Species returns the normalized species value of the sighting.
func (s *Sighting) Species() Species {
	tax := s.SpeciesTaxonomy
	if tax == nil {
		tax = map[string]*string{}
	}
	return Species{Label: s.SpeciesLabel, Taxonomy: tax}
}
