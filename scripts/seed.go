// One-off: go run scripts/seed.go
// Inserts a handful of demo tickets. Reads PG_DSN from the environment.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
)

type seedTicket struct {
	title, description, priority, status string
}

var seedTickets = []seedTicket{
	{"Printer jam", "The printer on 3rd floor is jammed and won't clear", "high", "open"},
	{"VPN keeps dropping", "Connection drops every ten minutes when working from home", "medium", "inprogress"},
	{"Request second monitor", "A second monitor would help with the quarterly reporting work", "low", "open"},
	{"Password reset", "Locked out of the CRM after too many attempts", "medium", "closed"},
}

func main() {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "PG_DSN is required")
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	for _, t := range seedTickets {
		var id int64
		err := conn.QueryRow(ctx,
			`INSERT INTO tickets (title, description, priority, status) VALUES ($1, $2, $3, $4) RETURNING id`,
			t.title, t.description, t.priority, t.status,
		).Scan(&id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert %q: %v\n", t.title, err)
			os.Exit(1)
		}
		fmt.Printf("seeded ticket %d: %s\n", id, t.title)
	}
}
