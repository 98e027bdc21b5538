// Command seed-catalog loads an allergen catalog from a YAML file and
// upserts it into the engine database. Used to bootstrap a fresh install
// and to push curated catalog updates.
//
// Usage:
//
//	PGPASSWORD=... go run ./scripts/seed-catalog -file catalog.yaml
//
// YAML format:
//
//	allergens:
//	  - name: Frutos Secos
//	    icon: "🥜"
//	    severity: critical
//	    keywords: [mani, nuez, almendra, avellana]
//	    active: true
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kiosco-inc/kiosco-engine/pkg/config"
	"github.com/kiosco-inc/kiosco-engine/pkg/database"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
	"github.com/kiosco-inc/kiosco-engine/pkg/repositories"
)

type catalogFile struct {
	Allergens []catalogEntry `yaml:"allergens"`
}

type catalogEntry struct {
	Name     string   `yaml:"name"`
	Icon     string   `yaml:"icon"`
	Severity string   `yaml:"severity"`
	Keywords []string `yaml:"keywords"`
	Active   *bool    `yaml:"active"` // defaults to true when omitted
}

func main() {
	file := flag.String("file", "catalog.yaml", "path to the catalog YAML file")
	flag.Parse()

	if err := run(*file); err != nil {
		log.Fatalf("seed-catalog: %v", err)
	}
}

func run(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	var catalog catalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}
	if len(catalog.Allergens) == 0 {
		return fmt.Errorf("catalog file %s defines no allergens", path)
	}

	cfg, err := config.Load("seed")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: 2,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewAllergenRepository(db)

	for _, entry := range catalog.Allergens {
		severity, err := models.ParseSeverityTier(entry.Severity)
		if err != nil {
			return fmt.Errorf("allergen %q: %w", entry.Name, err)
		}

		active := true
		if entry.Active != nil {
			active = *entry.Active
		}

		allergen := &models.Allergen{
			Name:     entry.Name,
			Icon:     entry.Icon,
			Severity: severity,
			Keywords: entry.Keywords,
			Active:   active,
		}
		if err := repo.Upsert(ctx, allergen); err != nil {
			return fmt.Errorf("upsert allergen %q: %w", entry.Name, err)
		}
		log.Printf("upserted %s (severity=%s, keywords=%d, active=%v)",
			allergen.Name, allergen.Severity, len(allergen.Keywords), active)
	}

	log.Printf("seeded %d allergens", len(catalog.Allergens))
	return nil
}
