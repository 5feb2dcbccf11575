package main

import (
	"os"

	"meterbill/backend/services/tariff-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
