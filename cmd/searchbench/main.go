package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"chessbot/board"
	"chessbot/engine"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", 5, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	configFlag := flag.String("config", "", "JSON settings file")
	hashFlag := flag.Int("hash", -1, "transposition table size in MB (overrides config when >= 0)")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatalf("depth must be positive, got %d", *depthFlag)
	}

	settings := engine.DefaultSettings()
	if *configFlag != "" {
		var err error
		if settings, err = engine.LoadSettings(*configFlag); err != nil {
			log.Fatalf("load settings: %v", err)
		}
	}
	if *hashFlag >= 0 {
		settings.HashMB = *hashFlag
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fen := board.StartFEN
	if *fenFlag != "" {
		fen = *fenFlag
	}
	depth := *depthFlag
	repeat := *repeatFlag

	fmt.Printf("searchbench: fen=%q depth=%d repeat=%d hash=%dMB\n", fen, depth, repeat, settings.HashMB)

	logger := log.New(os.Stdout, "", 0)
	startAll := time.Now()
	for i := 0; i < repeat; i++ {
		// Fresh position and searcher for each run
		pos, err := board.ParseFEN(fen)
		if err != nil {
			log.Fatalf("parse FEN: %v", err)
		}
		searcher := engine.NewSearcher(engine.NewEvaluator(engine.DefaultEvalConfig()), settings, logger)

		r := searcher.Search(pos, depth)
		nps := float64(r.Nodes) / max(r.Duration.Seconds(), 1e-9)
		fmt.Printf("iteration %d: bestmove %v score %d nodes %d time=%v nps=%.0f\n",
			i+1, r.Move, r.Score, r.Nodes, r.Duration, nps)
	}
	fmt.Printf("total time: %v\n", time.Since(startAll))

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatalf("could not create memory profile: %v", err)
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("could not write memory profile: %v", err)
		}
	}
}
