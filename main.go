// Package main is the entry point for the aerosense application
package main

import (
	"github.com/ethpandaops/aerosense/cmd"
)

func main() {
	cmd.Execute()
}
