package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"chessbot/book"
	"chessbot/engine"
	"chessbot/server"
)

const DefaultPort = 8080

func main() {
	var port uint
	flag.UintVar(&port, "port", DefaultPort, "Port to listen on")
	configPath := flag.String("config", "", "JSON settings file")
	bookPath := flag.String("book", "", "Opening book (.bin polyglot or CSV lines)")
	flag.Parse()
	if port == 0 || port > 65535 {
		fmt.Println("Invalid port number")
		os.Exit(1)
	}

	settings := engine.DefaultSettings()
	if *configPath != "" {
		var err error
		if settings, err = engine.LoadSettings(*configPath); err != nil {
			log.Fatalf("settings: %v", err)
		}
	}

	var newBook func() (book.Book, error)
	if *bookPath != "" {
		path := *bookPath
		if _, err := book.Load(path); err != nil {
			log.Fatalf("book: %v", err)
		}
		newBook = func() (book.Book, error) { return book.Load(path) }
	}

	srv := server.New(server.Config{
		Settings:  settings,
		NewBook:   newBook,
		AccessLog: os.Stdout,
		Logger:    log.New(os.Stderr, "", log.LstdFlags),
	})
	fmt.Printf("Starting server on :%d\n", port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), srv))
}
