package main

import (
	"fmt"
	"os"

	"github.com/kobzarvs/vtext/internal/app"
	"github.com/kobzarvs/vtext/internal/config"
)

const usage = `usage:
  vtext [file]        edit file
  vtext fmt <file>    print file with normalized markup
  vtext runs <file>   print the styled runs of file`

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if err := run(args); err != nil {
		fmt.Fprintln(os.Stderr, "vtext:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return app.New(nil).Run()
	}
	switch args[0] {
	case "-h", "--help", "help":
		fmt.Println(usage)
		return nil
	case "fmt", "runs":
		if len(args) != 2 {
			return fmt.Errorf("%s: expected one file\n%s", args[0], usage)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if args[0] == "runs" {
			return app.WriteRuns(os.Stdout, cfg, string(data))
		}
		out, err := app.Format(cfg, string(data))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	return app.New(args).Run()
}
