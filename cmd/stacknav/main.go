package main

import (
	"fmt"
	"os"

	"github.com/agiangrant/stacknav/cmd/stacknav/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "simulate":
		err = commands.Simulate(args)
	case "preview":
		err = commands.Preview(args)
	case "validate":
		err = commands.Validate(args)
	case "init":
		err = commands.Init(args)
	case "version", "-v", "--version":
		fmt.Printf("stacknav version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`stacknav - card stack navigation toolkit

Usage: stacknav <command> [options]

Commands:
  simulate   Run a scripted navigation scenario and print its events
  preview    Interactive terminal preview of a card stack
  validate   Check a stacknav.toml or stacknav.yaml file
  init       Write a default stacknav.toml
  version    Print version information
  help       Show this help message

Examples:
  stacknav init                          Create stacknav.toml with defaults
  stacknav validate stacknav.toml        Report the first invalid setting
  stacknav simulate scenario.yaml        Replay pushes, pops and swipes
  stacknav preview --mode modal          Try the modal presentation

Configuration:
  Commands read stacknav.toml (or stacknav.yaml) from the current directory
  or its parents unless --config is given.`)
}
