package main

import (
	"log"

	"github.com/myzhan/boomer"

	"github.com/nedaZarei/ImageUploadLoadTest/config"
	"github.com/nedaZarei/ImageUploadLoadTest/pkg/loadtest"
)

// loadworker is a locust worker: it registers the upload task with boomer and
// lets the locust master own user counts, ramp-up and result aggregation.
// Run with e.g. --master-host=127.0.0.1 --master-port=5557.
func main() {
	cfg, err := config.InitConfig("./config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	task := loadtest.NewUploadTask(cfg.LoadTest)

	boomer.Events.Subscribe(boomer.EVENT_SPAWN, func(workers int, spawnRate float64) {
		log.Println("Starting the test.")
	})
	boomer.Events.Subscribe(boomer.EVENT_QUIT, func() {
		log.Println("Test completed.")
	})

	boomer.Run(task.Task())
}
