package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/effective-security/x/ctl"

	"github.com/tomjnixon/alot/cmd/pgp-tool/cli"
	"github.com/tomjnixon/alot/internal/version"
	_ "github.com/tomjnixon/alot/pgpengine/openpgpengine"
)

type app struct {
	cli.Cli

	Keys    cli.KeysCmd    `cmd:"" help:"Keyring commands"`
	Sign    cli.SignCmd    `cmd:"" help:"Create a detached signature"`
	Verify  cli.VerifyCmd  `cmd:"" help:"Verify a detached signature"`
	Encrypt cli.EncryptCmd `cmd:"" help:"Encrypt to recipients"`
	Decrypt cli.DecryptCmd `cmd:"" help:"Decrypt and verify"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("pgp-tool"),
		kong.Description("CLI tool for the PGP trust layer"),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		if cl.Debug {
			// in DEBUG more print command line
			_, _ = fmt.Fprintf(ctx.Stdout, "#\n# %s\n#\n", strings.Join(args, " "))
		}
		err = ctx.Run(&cl.Cli)
		ctx.FatalIfErrorf(err)
	}
}
