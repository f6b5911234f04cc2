// Seeds a development database with sample practitioners and customers so the
// API can be exercised without a registration flow.
//
// Usage: DATABASE_URL=postgres://... go run ./scripts/seed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/brightpaw/vetclinic-platform/internal/postgres"
)

type seedPractitioner struct {
	fullName       string
	email          string
	specialization string
	location       string
	workStart      string
	workEnd        string
	slotDuration   int
	feeCents       int64
}

var practitionerRows = []seedPractitioner{
	{"Dr. Asha Perera", "asha@brightpaw.vet", "general", "Colombo", "09:00", "17:00", 30, 350000},
	{"Dr. Ruwan Silva", "ruwan@brightpaw.vet", "surgery", "Colombo", "10:00", "16:00", 60, 600000},
	{"Dr. Mei Tan", "mei@brightpaw.vet", "dermatology", "Kandy", "08:30", "12:30", 30, 400000},
	{"Dr. Sam Fernando", "sam@brightpaw.vet", "general", "Galle", "", "", 0, 300000},
}

type seedCustomer struct {
	fullName string
	email    string
	contact  string
}

var customerRows = []seedCustomer{
	{"Nimal Perera", "nimal@example.com", "+94 77 123 4567"},
	{"Kumari Jayawardena", "kumari@example.com", "+94 71 987 6543"},
}

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	for _, p := range practitionerRows {
		var workStart, workEnd any
		var slotDuration any
		if p.workStart != "" {
			workStart, workEnd, slotDuration = p.workStart, p.workEnd, p.slotDuration
		}
		id := uuid.New().String()
		_, err := pool.Exec(ctx, `
			INSERT INTO practitioners
				(id, email, full_name, specialization, clinic_location,
				 work_start, work_end, slot_duration, consultation_fee_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (email) DO NOTHING
		`, id, p.email, p.fullName, p.specialization, p.location, workStart, workEnd, slotDuration, p.feeCents)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed practitioner %s: %v\n", p.email, err)
			os.Exit(1)
		}
		fmt.Printf("practitioner %-22s %s\n", p.fullName, id)
	}

	for _, c := range customerRows {
		id := uuid.New().String()
		_, err := pool.Exec(ctx, `
			INSERT INTO customers (id, email, full_name, contact_number)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING
		`, id, c.email, c.fullName, c.contact)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed customer %s: %v\n", c.email, err)
			os.Exit(1)
		}
		fmt.Printf("customer     %-22s %s\n", c.fullName, id)
	}

	fmt.Println("seed complete")
}
