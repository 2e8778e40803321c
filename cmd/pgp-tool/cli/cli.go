package cli

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"golang.org/x/net/context"

	"github.com/tomjnixon/alot/internal/ctl"
	"github.com/tomjnixon/alot/pgpengine"
	"github.com/tomjnixon/alot/pgptrust"
)

var logger = xlog.NewPackageLogger("github.com/tomjnixon/alot", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Cfg      string `help:"Location of engine config file" required:"" type:"path"`
	Debug    bool   `short:"D" help:"Enable debug mode"`
	LogLevel string `short:"l" help:"Set the logging level (debug|info|warn|error)" default:"error"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	ctx   context.Context
	trust *pgptrust.Trust
}

// Context for requests
func (c *Cli) Context() context.Context {
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	return c.ctx
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// WithTrust allows to specify a custom trust layer
func (c *Cli) WithTrust(t *pgptrust.Trust) *Cli {
	c.trust = t
	return c
}

// AfterApply hook loads config
func (c *Cli) AfterApply(app *kong.Kong, vars kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		val := strings.TrimLeft(c.LogLevel, "=")
		l, err := xlog.ParseLevel(strings.ToUpper(val))
		if err != nil {
			return errors.WithStack(err)
		}
		xlog.SetGlobalLogLevel(l)
	}

	return nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value interface{}) error {
	return ctl.WriteJSON(c.Writer(), value)
}

// ReadFile reads the named file, or the input stream when name is "-"
func (c *Cli) ReadFile(name string) ([]byte, error) {
	if name == "" || name == "-" {
		b, err := io.ReadAll(c.Reader())
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// Trust loads the trust layer over the configured engine
func (c *Cli) Trust() *pgptrust.Trust {
	if c.trust != nil {
		return c.trust
	}
	if c.Cfg == "" {
		logger.Panicf("use --cfg flag to specify engine config file")
	}
	eng, err := pgpengine.Load(c.Cfg)
	if err != nil {
		logger.Panicf("unable to initialize engine: [%v]", err)
	}
	c.trust = pgptrust.New(eng)

	return c.trust
}
