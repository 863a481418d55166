package main

import (
	"os"

	"github.com/osmx/osm-go/contrib/osmctl"
)

func main() {
	if err := osmctl.NewRootCommand(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
