package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/menengai/fansite-api/api/handlers"

	"go.uber.org/zap"

	"github.com/menengai/fansite-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { //initialize database and router
		log.Fatal(err)
	}

	s := a.StartScheduler()
	defer s.Stop()

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("fansite-api is up and running",
		"port", port,
		"url", baseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
