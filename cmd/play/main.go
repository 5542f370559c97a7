package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"chessbot/board"
	"chessbot/book"
	"chessbot/engine"
)

func main() {
	configPath := flag.String("config", "", "JSON settings file")
	bookPath := flag.String("book", "", "Opening book (.bin polyglot or CSV lines)")
	fen := flag.String("fen", "", "Starting position (defaults to the initial position)")
	depth := flag.Int("depth", -1, "Fixed search depth (overrides config when >= 0)")
	moveTime := flag.Int("movetime", -1, "Milliseconds per move (overrides config when >= 0)")
	flag.Parse()

	settings := engine.DefaultSettings()
	if *configPath != "" {
		var err error
		if settings, err = engine.LoadSettings(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "settings: %v\n", err)
			os.Exit(2)
		}
	}
	if *depth >= 0 {
		settings.FixedDepth = *depth
	}
	if *moveTime >= 0 {
		settings.MoveTimeMs = *moveTime
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "settings: %v\n", err)
		os.Exit(2)
	}

	var newBook func() (book.Book, error)
	if *bookPath != "" {
		path := *bookPath
		if _, err := book.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "book: %v\n", err)
			os.Exit(2)
		}
		newBook = func() (book.Book, error) { return book.Load(path) }
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newConsole(os.Stdout, settings, newBook)
	if *fen != "" && *fen != board.StartFEN {
		if err := c.reset(*fen); err != nil {
			fmt.Fprintf(os.Stderr, "fen: %v\n", err)
			os.Exit(2)
		}
	}
	c.run(ctx, os.Stdin)
}
