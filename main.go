package main

import (
	_ "embed"

	"github.com/haierkeys/personal-notes/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}
