package main

import (
	"fmt"
	"os"

	"github.com/stagelight/showreel-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("Starting server...", "port", a.Cfg.Port)
	if err := a.Run(); err != nil {
		a.Log.Fatal("Server exited", "error", err)
	}
}
