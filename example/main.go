package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/cpm"
	"github.com/meikuraledutech/cpm/memory"
	"github.com/meikuraledutech/cpm/postgres"
)

func main() {
	ctx := context.Background()

	// Wire up postgres when DATABASE_URL is set, memory otherwise.
	var store cpm.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Bulk insert (validated as one registry) ───────────────────────
	activities, err := cpm.ParseInputs([]cpm.Input{
		{Activity: "Design", Predecessor: "none", ET: "5"},
		{Activity: "Backend", Predecessor: "Design", ET: "8"},
		{Activity: "Frontend", Predecessor: "Design", ET: "6"},
		{Activity: "Release", Predecessor: "Backend, Frontend", ET: "2"},
	})
	if err != nil {
		log.Fatalf("parse: %v", err)
	}

	created, err := store.CreateProject(ctx, &cpm.Project{ID: "website-launch", Name: "Website launch", Activities: activities})
	if err != nil {
		log.Fatalf("create project: %v", err)
	}
	fmt.Println("project created")
	printJSON(created)

	// ── Retrieve and rebuild ──────────────────────────────────────────
	p, err := store.GetProject(ctx, "website-launch")
	if err != nil {
		log.Fatalf("get project: %v", err)
	}
	w, err := cpm.LoadWorkspace(p.Activities, cpm.DefaultOptions())
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	fmt.Println("\ncritical path:")
	printJSON(w.Result().Analysis)

	// ── Granular: add a single activity ───────────────────────────────
	docs, err := w.Add(cpm.Input{Activity: "Docs", Predecessor: "Frontend", ET: "9"})
	if err != nil {
		log.Fatalf("add activity: %v", err)
	}
	if err := store.AddActivity(ctx, p.ID, &docs); err != nil {
		log.Fatalf("store activity: %v", err)
	}
	fmt.Printf("\nadded activity: %s, project now finishes on day %d\n", docs.Name, w.Result().Finish)
	fmt.Printf("critical: %v\n", w.Result().Analysis.CriticalActivities())

	// ── Cycle prevention ──────────────────────────────────────────────
	_, err = w.Add(cpm.Input{Activity: "Review", Predecessor: "Release", ET: "1"})
	if err != nil {
		log.Fatalf("add review: %v", err)
	}
	_, err = w.Add(cpm.Input{Activity: "Design2", Predecessor: "Design2", ET: "1"})
	var gerr *cpm.GraphError
	if errors.As(err, &gerr) && cpm.IsCycle(err) {
		fmt.Printf("\ncycle rejected: %v\n", gerr.Path)
	}
	fmt.Printf("activities still registered: %d\n", w.Len())

	// ── Schedule ──────────────────────────────────────────────────────
	fmt.Println("\nschedule:")
	for _, a := range w.Result().Activities {
		fmt.Printf("  %-10s day %2d-%2d  %s .. %s\n", a.Name, a.Start, a.End,
			a.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"))
	}

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteProject(ctx, p.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nproject deleted")
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
