package main

import (
	"log"

	"github.com/nedaZarei/ImageUploadLoadTest/config"
	"github.com/nedaZarei/ImageUploadLoadTest/service"
)

func main() {
	cfg, err := config.InitConfig("./config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	uploadService := service.NewUploadService(cfg)
	if err := uploadService.StartService(); err != nil {
		log.Fatalf("failed to start upload service: %v", err)
	}
}
