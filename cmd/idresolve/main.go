package main

import (
	"context"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
)

func main() {
	cmd := newRootCmd(&app{out: os.Stdout, errOut: os.Stderr}, buildinfo.SourceVersion())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
