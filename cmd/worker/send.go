package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/vinnesia/domainform-backend/config"
	"github.com/vinnesia/domainform-backend/internal/relay"
)

// RunSend posts one submission JSON document to the relay endpoint and
// prints the relay's answer to stdout.
func RunSend(args []string) {
	if len(args) < 1 {
		log.Fatal("usage: worker send <file.json|->")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	endpoint := cfg.Relay.EndpointURL
	if endpoint == "" {
		endpoint = "http://localhost:" + cfg.Server.Port + relay.Path
	}

	in, err := readInput(args[0])
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	resp, err := relay.NewClient(endpoint, cfg.Relay.Timeout).Send(context.Background(), in)
	if err != nil {
		log.Fatalf("send: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

func readInput(path string) (relay.Input, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return relay.Input{}, err
		}
		defer f.Close()
		r = f
	}

	var in relay.Input
	err := json.NewDecoder(r).Decode(&in)
	return in, err
}
