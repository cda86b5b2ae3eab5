//go:build !cli
// +build !cli

package main

import (
	"context"
	"log"

	"lunelle.GO/cmd"
	"lunelle.GO/config"
	_ "lunelle.GO/custom"
)

func main() {
	config.LoadEnv()
	if err := cmd.Serve(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
