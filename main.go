package main

import (
	"os"

	"dateplanner-api/core/logger"
	"dateplanner-api/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}
