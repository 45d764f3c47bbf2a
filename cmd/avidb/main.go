// Package main provides the avidb CLI application.
// avidb manages the lifecycle of the AviAtlas PostgreSQL database.
package main

import (
	"github.com/aviatlas/avidb/cmd"
)

func main() {
	cmd.Execute()
}
