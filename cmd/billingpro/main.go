package main

import (
	"os"

	"billingpro/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
