package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/credagent/agent-admin-backend/api/clients"
	"github.com/credagent/agent-admin-backend/cmd/flags"
	"github.com/urfave/cli/v2"
)

var serverURLFlag = &cli.StringFlag{
	Name:  "server-url",
	Value: "http://127.0.0.1:8031",
	Usage: "base URL of the admin status server",
}

func main() {
	app := &cli.App{
		Name:  "statusclient",
		Usage: "Query the credential-agent admin status API",
		Flags: append([]cli.Flag{serverURLFlag, flags.AdminKeyFlag}, flags.CommonFlags...),
		Commands: []*cli.Command{
			{
				Name:  "live",
				Usage: "Check server liveness",
				Action: func(cCtx *cli.Context) error {
					return checkHealth(cCtx, "live")
				},
			},
			{
				Name:  "ready",
				Usage: "Check server readiness",
				Action: func(cCtx *cli.Context) error {
					return checkHealth(cCtx, "ready")
				},
			},
			{
				Name:  "reset",
				Usage: "Reset the server's timing statistics",
				Action: func(cCtx *cli.Context) error {
					client := newClient(cCtx)
					ctx, cancel := timeoutContext()
					defer cancel()

					if err := client.ResetStats(ctx); err != nil {
						return err
					}
					fmt.Println("statistics reset")
					return nil
				},
			},
			{
				Name:  "doc",
				Usage: "Fetch the OpenAPI document title and version",
				Action: func(cCtx *cli.Context) error {
					client := newClient(cCtx)
					ctx, cancel := timeoutContext()
					defer cancel()

					doc, err := client.Document(ctx)
					if err != nil {
						return err
					}
					info, _ := doc["info"].(map[string]any)
					fmt.Printf("%v %v\n", info["title"], info["version"])
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) *clients.StatusClient {
	return clients.NewStatusClient(cCtx.String(serverURLFlag.Name), cCtx.String(flags.AdminKeyFlag.Name))
}

func timeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func checkHealth(cCtx *cli.Context, kind string) error {
	client := newClient(cCtx)
	ctx, cancel := timeoutContext()
	defer cancel()

	var ok bool
	var err error
	if kind == "live" {
		ok, err = client.Live(ctx)
	} else {
		ok, err = client.Ready(ctx)
	}
	if err != nil {
		return err
	}

	if !ok {
		fmt.Printf("server is not %s\n", kind)
		os.Exit(1)
	}
	fmt.Printf("server is %s\n", kind)
	return nil
}
