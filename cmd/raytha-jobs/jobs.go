package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/RaythaHQ/raytha-sub006/pkg/api/http/client"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

const (
	docJobs = `Print jobs as JSON from a running API server.`
)

type optsJobs struct {
	Addr     string   `long:"addr" env:"ADDR" description:"API server" default:"http://localhost:8100"`
	Kinds    []string `long:"kind" description:"Only jobs of this kind (repeatable)"`
	Statuses []string `long:"status" description:"Only jobs in this status (repeatable)"`
	Limit    int      `long:"limit" description:"Max jobs to print" default:"100"`
	Timeout  int      `long:"timeout-ms" description:"Request timeout" default:"10000"`
}

func (c *optsJobs) Execute(args []string) error {
	cli, err := client.New(c.Addr)
	if err != nil {
		return err
	}

	q := &structs.Query{Limit: c.Limit, Kinds: c.Kinds}
	for _, s := range c.Statuses {
		q.Statuses = append(q.Statuses, structs.ToStatus(s))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.Timeout)*time.Millisecond)
	defer cancel()

	jobs, err := cli.Jobs(ctx, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(jobs)
}
