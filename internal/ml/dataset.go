package ml

import (
	"sort"
	"time"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	apperrors "github.com/healthsphere/noshow/backend/pkg/errors"
)

// NeutralAttendanceScore is the attendance score assigned to patients with
// no qualifying prior visits.
const NeutralAttendanceScore = 75.0

// reminderHeuristicDays is the scheduling interval at or above which a
// historical row lacking an explicit reminder flag is assumed to have had a
// reminder sent. An approximation, not ground truth: the bulk dataset never
// recorded reminder delivery.
const reminderHeuristicDays = 3

// Dataset is a cleaned, labeled training table plus the population
// statistics serving-time imputation needs.
type Dataset struct {
	Features [][]float64
	Labels   []int
	Stats    entities.PopulationStats
}

// Cleaner builds labeled training tables from raw visit rows. It applies the
// same strict-earlier-than leakage rule as live attendance scoring: a row's
// attendance score only ever sees that patient's rows scheduled strictly
// before the row's own date.
type Cleaner struct{}

// NewCleaner creates a new dataset cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

type cleanRow struct {
	patientID     string
	age           float64
	sex           float64
	leadDays      float64
	reminder      float64
	scheduledDate time.Time
	label         int
}

// Build assembles the training table from the union of bulk historical rows
// and live outcome rows. Bulk rows come first so de-duplication keeps the
// earliest occurrence of each visit identity.
func (c *Cleaner) Build(bulk, live []entities.RawVisitRow) (*Dataset, error) {
	combined := make([]entities.RawVisitRow, 0, len(bulk)+len(live))
	combined = append(combined, bulk...)
	combined = append(combined, live...)

	rows := make([]cleanRow, 0, len(combined))
	seen := make(map[string]struct{}, len(combined))

	for _, raw := range combined {
		if raw.PatientID == "" || raw.Age == nil || raw.ScheduledDate == nil {
			continue
		}

		if raw.VisitID != "" {
			if _, dup := seen[raw.VisitID]; dup {
				continue
			}
			seen[raw.VisitID] = struct{}{}
		}

		// Only rows with an unambiguous kept/missed outcome are trainable.
		if raw.Status != entities.VisitStatusDone || raw.ShowedUp == nil {
			continue
		}

		label := 0
		if *raw.ShowedUp {
			label = 1
		}

		leadDays := 0
		if raw.BookingDate != nil {
			leadDays = entities.LeadDays(*raw.BookingDate, *raw.ScheduledDate)
		}

		reminder := 0.0
		if raw.ReminderSent != nil {
			if *raw.ReminderSent {
				reminder = 1.0
			}
		} else if leadDays >= reminderHeuristicDays {
			reminder = 1.0
		}

		rows = append(rows, cleanRow{
			patientID:     raw.PatientID,
			age:           float64(*raw.Age),
			sex:           entities.EncodeSex(raw.Sex),
			leadDays:      float64(leadDays),
			reminder:      reminder,
			scheduledDate: raw.ScheduledDate.UTC(),
			label:         label,
		})
	}

	if len(rows) < 2 {
		return nil, apperrors.NewInsufficientDataError("fewer than two usable rows after cleaning")
	}

	scores := attendanceScores(rows)

	features := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	shows := 0
	ages := make([]float64, len(rows))

	for i, row := range rows {
		features[i] = []float64{row.age, row.sex, row.leadDays, row.reminder, scores[i]}
		labels[i] = row.label
		ages[i] = row.age
		if row.label == 1 {
			shows++
		}
	}

	if shows == 0 || shows == len(rows) {
		return nil, apperrors.NewInsufficientDataError("only one label class present after cleaning")
	}

	return &Dataset{
		Features: features,
		Labels:   labels,
		Stats: entities.PopulationStats{
			MedianAge: median(ages),
			ShowRate:  float64(shows) / float64(len(rows)),
			RowCount:  len(rows),
		},
	}, nil
}

// attendanceScores computes the leakage-free historical attendance score for
// each row: only the same patient's rows with a strictly earlier scheduled
// date count. Rows sharing a scheduled date do not see each other.
func attendanceScores(rows []cleanRow) []float64 {
	byPatient := make(map[string][]int)
	for i, row := range rows {
		byPatient[row.patientID] = append(byPatient[row.patientID], i)
	}

	scores := make([]float64, len(rows))

	for _, indices := range byPatient {
		sort.SliceStable(indices, func(a, b int) bool {
			return rows[indices[a]].scheduledDate.Before(rows[indices[b]].scheduledDate)
		})

		// Prefix counts advance only when the scheduled date moves strictly
		// forward, so same-day rows share the same history window.
		priorTotal, priorShows := 0, 0
		pendingTotal, pendingShows := 0, 0
		var windowDate time.Time

		for k, idx := range indices {
			date := rows[idx].scheduledDate
			if k == 0 || date.After(windowDate) {
				priorTotal += pendingTotal
				priorShows += pendingShows
				pendingTotal, pendingShows = 0, 0
				windowDate = date
			}

			if priorTotal == 0 {
				scores[idx] = NeutralAttendanceScore
			} else {
				scores[idx] = 100.0 * float64(priorShows) / float64(priorTotal)
			}

			pendingTotal++
			if rows[idx].label == 1 {
				pendingShows++
			}
		}
	}

	return scores
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
