package entities

// FeatureVector holds the model inputs for a single visit in their fixed,
// canonical order: age, sex, scheduling interval in days, reminder flag,
// historical attendance score. The order must match the order the scaler and
// classifier were fit with.
type FeatureVector struct {
	Age             float64 `json:"age"`
	Sex             float64 `json:"sex"`
	LeadDays        float64 `json:"lead_days"`
	ReminderSent    float64 `json:"reminder_sent"`
	AttendanceScore float64 `json:"attendance_score"`
}

// NumFeatures is the dimensionality of a FeatureVector.
const NumFeatures = 5

// Values returns the vector as an ordered slice for numeric pipelines.
func (v FeatureVector) Values() []float64 {
	return []float64{v.Age, v.Sex, v.LeadDays, v.ReminderSent, v.AttendanceScore}
}
