package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"fruitsight/internal/dashboard"
)

func main() {
	apiURL := flag.String("api", "http://localhost:5000", "backend base URL")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync()
	}()

	if v := os.Getenv("FRUITSIGHT_API"); v != "" && !flagPassed("api") {
		*apiURL = v
	}

	client := dashboard.NewClient(*apiURL, logger)
	app := dashboard.NewApp(client, logger)
	app.Run(context.Background())
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}
