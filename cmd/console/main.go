package main

import "github.com/jrsteele09/go-catalog-admin/cmd/console/cmd"

func main() {
	cmd.Execute()
}
