package main

import (
	"flag"
	"log"

	"github.com/checkmarble/form-designer/cmd"
)

// Overwritten at build time with -ldflags "-X main.apiVersion=..."
var apiVersion = "dev"

func main() {
	shouldRunServer := flag.Bool("server", true, "Run the designer server")
	flag.Parse()

	compiled := cmd.CompiledConfig{Version: apiVersion}

	if *shouldRunServer {
		if err := cmd.RunServer(compiled); err != nil {
			log.Fatal(err)
		}
	}
}
