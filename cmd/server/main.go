package main

import (
	"log"
	"os"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/app"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lshortfile)
	application, err := app.New(version, buildDate, logger)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	if err := application.Run(); err != nil {
		logger.Fatalf("shutdown: %v", err)
	}
}
