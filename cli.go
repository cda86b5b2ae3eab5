//go:build cli
// +build cli

package main

import (
	_ "lunelle.GO/custom"

	"lunelle.GO/cmd"
	"lunelle.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
