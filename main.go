package main

import (
	"errors"
	"fmt"
	"os"

	"pmdb/catalog"
	"pmdb/dberr"
	"pmdb/executor"
	indexmanager "pmdb/index_manager"
	"pmdb/query"
	"pmdb/repl"
	"pmdb/storage"
)

func main() {
	path := "pmdb.db"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	store := storage.NewManager(path)
	if err := store.Create(false); err != nil && !errors.Is(err, dberr.ErrAlreadyExists) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := store.Open(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	catalogPath := path + ".catalog.json"
	cat := catalog.New()
	if _, err := os.Stat(catalogPath); err == nil {
		if err := cat.Load(catalogPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	exec := executor.New(cat, store, indexmanager.NewManager())
	if err := exec.ReopenIndexes(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	shell := repl.New(query.NewEngine(exec), cat, os.Stdin, os.Stdout)
	if err := shell.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cat.Save(catalogPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
