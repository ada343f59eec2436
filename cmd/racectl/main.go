// cmd/racectl/main.go
// Operator CLI working directly against the API server's database.
//
// Usage:
//
//	go run ./cmd/racectl import results.json
//	go run ./cmd/racectl leaderboard 3 -o json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
