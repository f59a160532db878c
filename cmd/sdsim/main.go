// Package main provides the entry point for sdsim.
// sdsim emulates an SPI-mode SD card behind a memory-mapped register
// window and exercises it with the reference firmware's init sequence.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/sdsim/card"
	"github.com/sarchlab/sdsim/disk"
	"github.com/sarchlab/sdsim/host"
	"github.com/sarchlab/sdsim/latency"
	"github.com/sarchlab/sdsim/mmio"
)

var (
	imagePath  = flag.String("image", "", "Path to the 4 MiB card image")
	configPath = flag.String("config", "", "Path to latency configuration JSON file")
	blockNo    = flag.Uint("block", 0, "Block number to read after initialization")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: sdsim -image <disk.img> [options]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Latency configuration
	var latencyConfig *latency.Config
	if *configPath != "" {
		var err error
		latencyConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading latency config: %v\n", err)
			os.Exit(1)
		}
		if err := latencyConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid latency config: %v\n", err)
			os.Exit(1)
		}
	} else {
		latencyConfig = latency.DefaultConfig()
	}

	// Backing store load happens before any register traffic.
	store := disk.NewStore()
	if err := store.LoadImage(*imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading card image: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s (%d blocks of %d bytes)\n",
			*imagePath, disk.NumBlocks, disk.BlockSize)
		fmt.Printf("Block read latency: %v\n", latencyConfig.BlockRead)
	}

	controller := card.New(store,
		card.WithLatency(latency.NewModelWithConfig(latencyConfig)),
	)
	window := mmio.NewWindow(controller)
	driver := host.NewDriver(window)

	if err := driver.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Card initialization failed: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Println("Card initialized")
	}

	data, err := driver.ReadBlock(uint32(*blockNo))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Block read failed: %v\n", err)
		os.Exit(1)
	}

	dumpBlock(uint32(*blockNo), data)

	if *verbose {
		stats := controller.Stats()
		fmt.Printf("\nFrames: %d\n", stats.Frames)
		fmt.Printf("Reply bytes: %d\n", stats.ReplyBytes)
		fmt.Printf("Blocks read: %d\n", stats.BlocksRead)
	}
}

// dumpBlock prints a block as a 16-bytes-per-line hex dump.
func dumpBlock(blockNo uint32, data []byte) {
	fmt.Printf("Block %d:\n", blockNo)
	for i := 0; i < len(data); i += 16 {
		fmt.Printf("%08X ", uint64(blockNo)*disk.BlockSize+uint64(i))
		for j := i; j < i+16; j++ {
			fmt.Printf(" %02X", data[j])
		}
		fmt.Println()
	}
}
