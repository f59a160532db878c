// Package main provides the entry point for sdsim.
// sdsim is an SPI-mode SD card emulator built on Akita storage.
//
// For the full CLI, use: go run ./cmd/sdsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("sdsim - SPI-mode SD card emulator")
	fmt.Println("")
	fmt.Println("Usage: sdsim -image <disk.img> [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -image     Path to the 4 MiB card image")
	fmt.Println("  -config    Path to latency configuration JSON file")
	fmt.Println("  -block     Block number to read after initialization")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/sdsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/sdsim' instead.")
	}
}
