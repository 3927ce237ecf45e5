package main

import (
	"SevenDay/internal/repository"
	"SevenDay/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
