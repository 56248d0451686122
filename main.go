package main

import (
	"log"

	"futures-signals/app"
	"futures-signals/config"
)

func main() {
	// Load config from the environment and .env files
	cfg := config.Load()

	// Create and start app
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal(err)
	}
}
