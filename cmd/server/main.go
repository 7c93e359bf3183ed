package main

import (
	"context"
	"flag"
	"log"

	"courtworks/server/internal/app"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "facility config YAML path")
	clientDir := flag.String("client", "", "static client directory to serve at /")
	flag.Parse()

	cfg := app.Config{
		Addr:       *addr,
		ConfigPath: *configPath,
		ClientDir:  *clientDir,
	}
	if err := app.Run(context.Background(), cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
