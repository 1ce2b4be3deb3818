package models

// Procedure is the CUPS-coded billable service. Units is the number of
// consecutive booking slots the procedure consumes.
type Procedure struct {
	Code                string   `json:"code" bson:"_id"`
	Name                string   `json:"name" bson:"name"`
	Units               int      `json:"units" bson:"units"`
	RequiresOwnSchedule bool     `json:"requires_own_schedule" bson:"requires_own_schedule"`
	RestrictedDoctorIDs []string `json:"restricted_doctor_ids,omitempty" bson:"restricted_doctor_ids,omitempty"`
}

// CupsGroup is a shared-risk set of procedure codes with one monthly ceiling.
// The ceiling applies to line items whose payer classification matches
// PayerClass.
type CupsGroup struct {
	Name       string   `json:"name" bson:"_id"`
	Codes      []string `json:"codes" bson:"codes"`
	Max        int      `json:"max" bson:"max"`
	PayerClass string   `json:"payer_class" bson:"payer_class"`
}
