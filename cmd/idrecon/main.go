// Command idrecon runs the identity reconciliation server and its local
// maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/idrecon/cmd/idrecon/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
