package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/healthsphere/noshow/backend/internal/infrastructure/clients/postgres"
	"github.com/healthsphere/noshow/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id UUID PRIMARY KEY,
	full_name TEXT NOT NULL,
	age INTEGER,
	sex TEXT,
	attendance_score DOUBLE PRECISION NOT NULL DEFAULT 75,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS visits (
	id UUID PRIMARY KEY,
	patient_id UUID NOT NULL REFERENCES patients(id),
	booking_date TIMESTAMPTZ,
	scheduled_date TIMESTAMPTZ NOT NULL,
	reminder_sent BOOLEAN,
	status TEXT NOT NULL DEFAULT 'pending',
	showed_up BOOLEAN,
	was_late BOOLEAN,
	predicted_label TEXT,
	predicted_probability INTEGER,
	prediction_model_version TEXT,
	predicted_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_visits_patient_scheduled ON visits (patient_id, scheduled_date);
CREATE INDEX IF NOT EXISTS idx_visits_status_updated ON visits (status, updated_at);
`

var firstNames = []string{"Amara", "Chidi", "Funke", "Kemi", "Tunde", "Ngozi", "Emeka", "Bisi", "Sola", "Ifeoma"}
var lastNames = []string{"Okafor", "Adeyemi", "Balogun", "Eze", "Mohammed", "Okonkwo", "Adebayo", "Nwosu"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := goqu.New("postgres", pgClient.DB())

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE visits, patients RESTART IDENTITY CASCADE`); err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	now := time.Now().UTC()
	totalVisits := 0

	for i := 0; i < 80; i++ {
		patientID := uuid.New().String()
		age := 18 + rng.Intn(65)
		sex := "female"
		if rng.Intn(2) == 0 {
			sex = "male"
		}
		name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]

		insert, args, err := db.Insert("patients").Rows(goqu.Record{
			"id":         patientID,
			"full_name":  name,
			"age":        age,
			"sex":        sex,
			"created_at": now,
		}).ToSQL()
		if err != nil {
			log.Fatalf("Failed to build patient insert: %v", err)
		}
		if _, err := pgClient.DB().ExecContext(ctx, insert, args...); err != nil {
			log.Printf("Failed to create patient %s: %v", name, err)
			continue
		}

		// Each patient has a latent reliability driving their outcomes, so the
		// seeded history carries a learnable attendance signal.
		reliability := 0.4 + 0.55*rng.Float64()

		visitCount := 3 + rng.Intn(10)
		for v := 0; v < visitCount; v++ {
			scheduled := now.AddDate(0, 0, -rng.Intn(540)-1)
			leadDays := rng.Intn(21)
			booking := scheduled.AddDate(0, 0, -leadDays)
			reminder := leadDays >= 3 && rng.Float64() < 0.8
			showed := rng.Float64() < reliability
			if reminder {
				showed = rng.Float64() < reliability+0.1
			}

			insert, args, err := db.Insert("visits").Rows(goqu.Record{
				"id":             uuid.New().String(),
				"patient_id":     patientID,
				"booking_date":   booking,
				"scheduled_date": scheduled,
				"reminder_sent":  reminder,
				"status":         "done",
				"showed_up":      showed,
				"created_at":     booking,
				"updated_at":     scheduled,
			}).ToSQL()
			if err != nil {
				log.Fatalf("Failed to build visit insert: %v", err)
			}
			if _, err := pgClient.DB().ExecContext(ctx, insert, args...); err != nil {
				log.Printf("Failed to create visit for %s: %v", name, err)
				continue
			}
			totalVisits++
		}
	}

	log.Printf("Seeded 80 patients with %d completed visits", totalVisits)
}
