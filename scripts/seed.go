package main

import (
	"context"
	"log"
	"os"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/postgres"
	"github.com/artisanconnect/booking-backend/pkg/config"
)

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

	db := goqu.New("postgres", pgClient.DB())
	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				busy_blocks,
				bookings,
				break_rules,
				opening_rules,
				services,
				providers
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed the provider
	providerID := uuid.New().String()
	insert := func(table string, rows ...goqu.Record) {
		query, args, err := db.Insert(table).Rows(toInterfaces(rows)...).ToSQL()
		if err != nil {
			log.Fatalf("Failed to build %s insert: %v", table, err)
		}
		if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
			log.Fatalf("Failed to seed %s: %v", table, err)
		}
	}

	insert("providers", goqu.Record{
		"id":       providerID,
		"name":     "Atelier Moreau",
		"email":    "contact@atelier-moreau.example",
		"phone":    "+33 1 42 00 00 00",
		"timezone": cfg.Booking.ProviderTimezone,
	})
	log.Printf("Seeded provider %s", providerID)

	// 2. Seed services
	insert("services",
		goqu.Record{
			"id":               uuid.New().String(),
			"provider_id":      providerID,
			"name":             "Initial consultation",
			"description":      "On-site assessment and quote for custom work",
			"duration_minutes": 30,
			"base_price_cents": 5000,
			"deposit_rate":     0.2,
		},
		goqu.Record{
			"id":               uuid.New().String(),
			"provider_id":      providerID,
			"name":             "Workshop session",
			"description":      "Full working session in the workshop",
			"duration_minutes": 90,
			"base_price_cents": 18000,
			"deposit_rate":     0.3,
		},
	)
	log.Println("Seeded services")

	// 3. Opening hours: Monday to Friday, 08:30 to 18:00
	openingRules := make([]goqu.Record, 0, 5)
	for day := 1; day <= 5; day++ {
		openingRules = append(openingRules, goqu.Record{
			"id":            uuid.New().String(),
			"provider_id":   providerID,
			"day_of_week":   day,
			"start_minutes": 510,
			"end_minutes":   1080,
		})
	}
	insert("opening_rules", openingRules...)

	// 4. Lunch break: Monday to Friday, 12:00 to 13:00
	breakRules := make([]goqu.Record, 0, 5)
	for day := 1; day <= 5; day++ {
		breakRules = append(breakRules, goqu.Record{
			"id":            uuid.New().String(),
			"provider_id":   providerID,
			"day_of_week":   day,
			"start_minutes": 720,
			"end_minutes":   780,
		})
	}
	insert("break_rules", breakRules...)

	log.Println("Seeded opening hours and breaks")
	log.Println("Seeding complete")
}

func toInterfaces(rows []goqu.Record) []interface{} {
	out := make([]interface{}, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
