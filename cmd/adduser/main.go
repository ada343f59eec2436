// cmd/adduser/main.go
// Creates or updates a reviewer account in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username padraic -password testing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/padraicbc/racematch/config"
	bundb "github.com/padraicbc/racematch/db"
	"github.com/padraicbc/racematch/handlers"
	"github.com/padraicbc/racematch/models"
	"github.com/padraicbc/racematch/store"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	hash, err := handlers.HashPasswordForUser(*username, *password)
	if err != nil {
		log.Fatal("adduser: ", err)
	}

	ctx := context.Background()
	cfg := config.Load()
	db, err := bundb.Setup(ctx, cfg)
	if err != nil {
		log.Fatal("setup db: ", err)
	}
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables: ", err)
	}

	user := &models.User{Username: *username, Password: hash}
	if err := store.NewPGStore(db).UpsertUser(ctx, user); err != nil {
		log.Fatal("upsert user: ", err)
	}

	fmt.Printf("user %q saved\n", *username)
}
