// Package main provides the entry point for the job opportunity inbox monitor.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job opportunity inbox monitor",
	Long:  "jobscout watches an email inbox for job-related messages, follows the links they contain, extracts structured job postings with an LLM (logging into portals when needed), and emails a consolidated summary.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
