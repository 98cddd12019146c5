package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewParser(nil, flags.Default)

	cmds := []struct {
		name  string
		short string
		long  string
		data  interface{}
	}{
		{"worker", "Run workers", docWorker, &optsWorker{}},
		{"api", "Run the API server", docAPI, &optsAPI{}},
		{"migrate", "Apply database migrations", docMigrate, &optsMigrate{}},
		{"jobs", "List jobs from a running API server", docJobs, &optsJobs{}},
	}
	for _, c := range cmds {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			panic(err)
		}
	}

	if _, err := parser.Parse(); err != nil {
		switch flagsErr := err.(type) {
		case *flags.Error:
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		default:
			os.Exit(1)
		}
	}
}
