package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/danaam/danaam-go/internal/config"
	"github.com/danaam/danaam-go/internal/stub"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := stub.Run(cfg); err != nil {
		log.Fatalf("stub: %v", err)
	}
}
