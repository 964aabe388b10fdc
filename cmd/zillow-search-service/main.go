package main

import (
	"flag"
	"log"
	"zillow-search-service/internal"
)

func main() {
	envPath := flag.String("env", "", "path to .env file (default: ./.env if present)")
	flag.Parse()

	application, err := internal.NewApp(*envPath)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application run failed: %v", err)
	}
}
