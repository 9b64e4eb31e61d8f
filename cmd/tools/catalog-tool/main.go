// cmd/tools/catalog-tool/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"mergington-activities/internal/catalog"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
)

var catalogPath string

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	pushCmd := flag.NewFlagSet("push", flag.ExitOnError)

	for _, set := range []*flag.FlagSet{validateCmd, listCmd, addCmd, pushCmd} {
		set.StringVar(&catalogPath, "path", "configs/catalog.json", "Path to catalog file")
	}

	// Add command flags
	name := addCmd.String("name", "", "Activity name (e.g., Chess Club)")
	description := addCmd.String("description", "", "Description")
	schedule := addCmd.String("schedule", "", "Schedule (e.g., Fridays, 3:30 PM - 5:00 PM)")
	maxParticipants := addCmd.Int("max", 0, "Maximum participants")

	// Push command flags
	redisAddr := pushCmd.String("redis", "localhost:6379", "Redis address")
	redisKey := pushCmd.String("key", "activities:catalog", "Redis key holding the catalog")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(os.Stdout, catalogPath); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listCatalog(os.Stdout, catalogPath); err != nil {
			fmt.Printf("Error listing catalog: %v\n", err)
			os.Exit(1)
		}

	case "add":
		addCmd.Parse(os.Args[2:])
		if *name == "" || *description == "" || *schedule == "" || *maxParticipants <= 0 {
			fmt.Println("Error: name, description, schedule, and a positive max are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		activity := catalog.Activity{
			Name:            *name,
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
		}
		if err := addActivity(catalogPath, activity); err != nil {
			fmt.Printf("Error adding activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added activity: %s\n", *name)

	case "push":
		pushCmd.Parse(os.Args[2:])
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pushCatalog(ctx, catalogPath, config.RedisConfig{Address: *redisAddr}, *redisKey); err != nil {
			fmt.Printf("Error pushing catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Pushed %s to redis key %s\n", catalogPath, *redisKey)

	case "help":
		fallthrough
	default:
		help()
	}
}

func loadCatalog(path string) (*catalog.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return catalog.Parse(raw)
}

func validateCatalog(out io.Writer, path string) error {
	doc, err := loadCatalog(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Catalog validation passed. Found %d activities.\n", len(doc.Activities))
	return nil
}

func listCatalog(out io.Writer, path string) error {
	doc, err := loadCatalog(path)
	if err != nil {
		return err
	}
	for _, a := range doc.Activities {
		fmt.Fprintf(out, "%-24s %d/%d  %s\n", a.Name, len(a.Participants), a.MaxParticipants, a.Schedule)
	}
	return nil
}

// addActivity appends to the catalog at path, starting a new catalog from
// the embedded default when the file does not exist yet.
func addActivity(path string, activity catalog.Activity) error {
	doc, err := loadCatalog(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if doc, err = catalog.Default(); err != nil {
			return err
		}
	}

	if err := doc.Add(activity); err != nil {
		return err
	}

	data, err := doc.Encode()
	if err != nil {
		return err
	}
	// Re-parse so a bad -max or empty field never reaches disk.
	if _, err := catalog.Parse(data); err != nil {
		return err
	}
	return saveCatalog(path, data)
}

func pushCatalog(ctx context.Context, path string, cfg config.RedisConfig, key string) error {
	doc, err := loadCatalog(path)
	if err != nil {
		return err
	}

	rdb, err := database.NewRedis(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := rdb.Ping(ctx); err != nil {
		return err
	}
	return catalog.NewRedisSource(rdb, key).Put(ctx, doc)
}

func saveCatalog(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: catalog-tool <command> [flags]

Commands:
  validate Validate a catalog file against the catalog schema
  list     List activities with participant counts
  add      Add a new activity to a catalog file
  push     Publish a catalog file to Redis for seed.source=redis
  help     Show this help message

Examples:
  catalog-tool validate -path configs/catalog.json
  catalog-tool list -path configs/catalog.json
  catalog-tool add -path configs/catalog.json -name "Science Olympiad" -description "Compete in science events" -schedule "Mondays, 3:30 PM - 5:00 PM" -max 18
  catalog-tool push -path configs/catalog.json -redis localhost:6379 -key activities:catalog

Use 'catalog-tool <command> -h' for more information about a command.
`, "\n")
}
