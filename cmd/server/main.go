package main

import (
	"github.com/voltpass/vpc-backend/internal/server"
)

// @title VoltPass VPC Backend API
// @version 1.0
// @description API for purchasing VPC with crypto deposits.

// @BasePath /api/v1
func main() {
	server.Init()
}
