package models

type Doctor struct {
	ID         string `json:"id" bson:"_id"`
	Name       string `json:"name" bson:"name"`
	MinimumAge int    `json:"minimum_age,omitempty" bson:"minimum_age,omitempty"`
}

// CanTreat applies the optional minimum-age-to-treat restriction. Zero means
// unrestricted.
func (d Doctor) CanTreat(patientAge int) bool {
	return d.MinimumAge == 0 || patientAge >= d.MinimumAge
}
