package main

import (
	"github.com/CodeCraftStudio/auth_service/config"
	"github.com/CodeCraftStudio/auth_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
