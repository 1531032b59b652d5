package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wadjakorntonsri/folio/pkg/bootstrap"
	"github.com/wadjakorntonsri/folio/pkg/config"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

// snapshot is the export/import file format.
type snapshot struct {
	Profiles  []domain.Profile         `json:"profiles"`
	Analytics []domain.AggregateRecord `json:"analytics"`
}

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")

	if len(os.Args) < 2 {
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}

	cfg := config.Load()
	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer app.Close()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(ctx, app)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(ctx, app, *importFile)
	default:
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}
}

func doExport(ctx context.Context, app *bootstrap.App) {
	profiles, err := app.Profiles.DumpProfiles(ctx)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	records, err := app.Analytics.Dump(ctx)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot{Profiles: profiles, Analytics: records}); err != nil {
		log.Fatalf("Encode failed: %v", err)
	}
}

func doImport(ctx context.Context, app *bootstrap.App, filename string) {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		log.Fatalf("Decode failed: %v", err)
	}

	imported := make(map[string]bool, len(snap.Profiles))
	count := 0
	for _, p := range snap.Profiles {
		existing, _ := app.Profiles.GetByUsername(ctx, p.Username)
		if existing != nil {
			log.Printf("Skipping existing username: %s", p.Username)
			continue
		}
		if err := app.Profiles.Create(ctx, &p); err != nil {
			log.Printf("Failed to import %s: %v", p.Username, err)
			continue
		}
		imported[p.ID] = true
		count++
	}

	restored := 0
	for i := range snap.Analytics {
		rec := &snap.Analytics[i]
		if !imported[rec.SubjectID] {
			continue
		}
		if err := app.Analytics.Restore(ctx, rec); err != nil {
			log.Printf("Failed to restore analytics for %s: %v", rec.SubjectKey, err)
			continue
		}
		restored++
	}
	log.Printf("Imported %d profiles, %d analytics records", count, restored)
}
