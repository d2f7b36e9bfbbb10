package main

import (
	"log"
	"os"

	"github.com/lu-zhengda/wiper/internal/cli"
	"github.com/spf13/cobra/doc"
)

func main() {
	manDir := "./docs/man"
	mdDir := "./docs/cli"
	for _, dir := range []string{manDir, mdDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
	}
	header := &doc.GenManHeader{
		Title:   "WIPER",
		Section: "1",
	}
	if err := doc.GenManTree(cli.RootCmd(), header, manDir); err != nil {
		log.Fatal(err)
	}
	if err := doc.GenMarkdownTree(cli.RootCmd(), mdDir); err != nil {
		log.Fatal(err)
	}
}
