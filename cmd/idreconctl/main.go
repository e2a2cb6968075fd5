// Command idreconctl is the REST client for idrecon servers.
package main

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/marmos91/idrecon/cmd/idreconctl/commands"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		fmt.Fprintln(os.Stderr, "Is the server running? Check --server or `idreconctl context current`.")
	}
	os.Exit(1)
}
