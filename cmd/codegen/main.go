package main

import (
	"context"
	"fmt"
	"go/format"
	"log"
	"os"
	"time"

	"github.com/delaneyj/slotparty/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	argCountKey = "count"
	outKey      = "out"
	pkgKey      = "pkg"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate typed signal instance wrappers",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  argCountKey,
				Usage: "Highest number of typed arguments to generate",
				Value: 4,
			},
			&cli.StringFlag{
				Name:  outKey,
				Usage: "Output file",
				Value: "pkg/signals/typed_gen.go",
			},
			&cli.StringFlag{
				Name:  pkgKey,
				Usage: "Package name of the generated file",
				Value: "signals",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for typed signals started !")
	defer func() {
		log.Printf("Codegen for typed signals finished in %v", time.Since(start))
	}()

	count := int(cmd.Uint(argCountKey))
	out := cmd.String(outKey)
	log.Printf("Argument count: %d, output: %s", count, out)

	contents := templates.TypedGen(cmd.String(pkgKey), count)
	src, err := format.Source([]byte(contents))
	if err != nil {
		return fmt.Errorf("formatting generated code: %w", err)
	}
	return os.WriteFile(out, src, 0644)
}
