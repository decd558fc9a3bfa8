package main

import (
	"os"

	"github.com/canfinancialsolutions/canfs-admin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
