package main

import (
	"embed"

	"github.com/bluepython508/monfari/cmd"
)

//go:embed migrations
var migrationsFS embed.FS

func main() {
	cmd.Execute(migrationsFS)
}
