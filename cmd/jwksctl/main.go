package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/primait/jwks-client/pkg/client"
	"github.com/primait/jwks-client/pkg/keyset"
	"github.com/primait/jwks-client/pkg/source"
)

type CLI struct {
	URL        string        `required:"" help:"Absolute JWKS endpoint URL, e.g. https://tenant.example.com/.well-known/jwks.json"`
	TimeToLive time.Duration `default:"24h" help:"Key set cache time to live"`

	Get    GetCmd    `cmd:"" help:"Fetch a verification key by kid"`
	Decode DecodeCmd `cmd:"" help:"Verify a token and print its claims"`
}

type GetCmd struct {
	Kid string `arg:"" help:"Key id to look up"`
}

func (g *GetCmd) Run(ctx context.Context, c *client.Client) error {
	key, err := c.Get(ctx, g.Kid)
	if err != nil {
		return err
	}
	return printJSON(keyset.FromKeys(key))
}

type DecodeCmd struct {
	Token    string   `arg:"" help:"Raw JWT to verify"`
	Audience []string `help:"Audiences the token must match; omit to skip audience validation"`
}

func (d *DecodeCmd) Run(ctx context.Context, c *client.Client) error {
	claims, err := c.Decode(ctx, d.Token, d.Audience)
	if err != nil {
		return err
	}
	return printJSON(claims)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	cliCtx := kong.Parse(&cli)

	src, err := source.NewWebSource(cli.URL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	c := client.NewBuilder().TimeToLive(cli.TimeToLive).Build(src)

	cliCtx.BindTo(ctx, (*context.Context)(nil))
	cliCtx.Bind(c)

	if err := cliCtx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
