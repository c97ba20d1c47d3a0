package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/swipecast/vidgen/internal/logger"
	"github.com/swipecast/vidgen/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	lg, err := logger.New(os.Getenv("SERVER_MODE"))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := server.New(lg)
	r := srv.SetupRouter()

	lg.Info("starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		lg.Fatal("server exited", "error", err)
	}
}
