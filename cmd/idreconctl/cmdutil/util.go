// Package cmdutil provides shared utilities for idreconctl commands.
package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/idrecon/internal/cli/contexts"
	"github.com/marmos91/idrecon/internal/cli/output"
	"github.com/marmos91/idrecon/internal/cli/prompt"
	"github.com/marmos91/idrecon/pkg/apiclient"
)

// DefaultServerURL is used when neither --server nor a context is set.
const DefaultServerURL = "http://localhost:8080"

// UserAgent identifies idreconctl to the server. The root command adds the
// build version.
var UserAgent = "idreconctl"

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Output    string
	NoColor   bool
	Verbose   bool

	// outputSet records whether --output was given explicitly.
	outputSet bool
}

// SetOutput records an explicit --output value.
func (f *GlobalFlags) SetOutput(format string, explicit bool) {
	f.Output = format
	f.outputSet = explicit
}

// ResolveServer picks the server URL from --server, then the current
// context, then DefaultServerURL. A context's output format applies unless
// --output was given.
func ResolveServer() (string, error) {
	url, _, err := resolveServer()
	return url, err
}

// resolveServer is ResolveServer plus a description of where the URL came
// from, for --verbose.
func resolveServer() (url, source string, err error) {
	if Flags.ServerURL != "" {
		url, err = contexts.NormalizeURL(Flags.ServerURL)
		return url, "--server", err
	}

	store, err := contexts.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open contexts: %w", err)
	}
	name, ctx, err := store.Current()
	switch {
	case errors.Is(err, contexts.ErrNoCurrentContext):
		return DefaultServerURL, "default", nil
	case err != nil:
		return "", "", err
	}

	if ctx.Output != "" && !Flags.outputSet {
		Flags.Output = ctx.Output
	}
	return ctx.ServerURL, "context " + name, nil
}

// GetClient returns a client for the resolved server.
func GetClient() (*apiclient.Client, error) {
	url, source, err := resolveServer()
	if err != nil {
		return nil, err
	}
	if Flags.Verbose {
		fmt.Fprintf(os.Stderr, "Using %s (%s)\n", url, source)
	}
	return NewClient(url), nil
}

// NewClient returns a client for url that sends UserAgent.
func NewClient(url string) *apiclient.Client {
	return apiclient.New(url).WithUserAgent(UserAgent)
}

// Printer returns a printer for w honoring --output and --no-color.
func Printer(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format, !Flags.NoColor), nil
}

// PrintOutput prints data in the selected format. In table format it shows
// emptyMsg when isEmpty is set and renders table otherwise.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, table output.TableRenderer) error {
	p, err := Printer(w)
	if err != nil {
		return err
	}
	return p.PrintList(data, isEmpty, emptyMsg, table)
}

// PrintResource prints data as JSON or YAML, or calls table in table format.
func PrintResource(w io.Writer, data any, table func() error) error {
	p, err := Printer(w)
	if err != nil {
		return err
	}
	if p.Format() == output.FormatTable {
		return table()
	}
	return p.Print(data)
}

// PrintSuccess prints msg in table format only, keeping JSON and YAML
// output machine readable.
func PrintSuccess(msg string) {
	if p, err := Printer(os.Stdout); err == nil && p.Format() == output.FormatTable {
		p.Success(msg)
	}
}

// RunWithConfirmation runs fn once the user confirms label, or straight away
// with force. Declining or pressing Ctrl+C is not an error.
func RunWithConfirmation(label string, force bool, fn func() error) error {
	ok, err := prompt.ConfirmWithForce(label, force)
	switch {
	case prompt.IsAborted(err):
		fmt.Println("\nAborted.")
		return nil
	case err != nil:
		return err
	case !ok:
		fmt.Println("Aborted.")
		return nil
	}
	return fn()
}

// BoolToYesNo renders b as "yes" or "no".
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
