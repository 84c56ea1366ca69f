// Package cmd routes the shiraji-assistant entry point: serving the HTTP API
// is the default, with version and help handled before any initialization so
// they work even when configuration is broken.
package cmd

import (
	"fmt"
	"os"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the entry point called from main. Running with no arguments
// starts the server.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			return runServe()
		case "version", "--version", "-v":
			printVersion()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}
	return runServe()
}

func printVersion() {
	fmt.Printf("shiraji-assistant v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}

func printHelp() {
	fmt.Println("shiraji-assistant - Shiraji Group website chat assistant")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  shiraji-assistant            Start the HTTP API server (default)")
	fmt.Println("  shiraji-assistant serve      Start the HTTP API server")
	fmt.Println("  shiraji-assistant version    Show version information")
	fmt.Println("  shiraji-assistant help       Show this help")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  config.yaml in the working directory or ~/.shiraji/, overridden by")
	fmt.Println("  environment variables (OLLAMA_BASE_URL, OLLAMA_MODEL, SHIRAJI_*).")
}
