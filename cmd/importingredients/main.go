// Command importingredients loads an ingredient catalog file into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/YURESSA/foodgram-st/internal/bootstrap"
	"github.com/YURESSA/foodgram-st/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	path := flag.String("file", "ingredients.json", "JSON or YAML file of {name, measurement_unit} entries")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	return bootstrap.ImportIngredientsFile(context.Background(), rt.DB, *path)
}
