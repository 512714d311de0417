package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"cadenza/internal/config"
)

const consentHeader = `
==========================================================================
A database schema update is needed and requires your consent.

%s

To continue without changes, you need to downgrade to an earlier
version of Cadenza.

To back up your database files first, abort for now and find them here:

	%s

==========================================================================
Run schema update? [y/N]: `

// promptSchemaConsent asks the operator whether pending migrations may run.
// It blocks on interactive input; a non-terminal stdin denies so automated
// deployments never migrate silently.
func promptSchemaConsent(reasons []string, dataDir string) bool {
	if !isTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "schema update required but stdin is not a terminal; refusing")
		return false
	}

	formatted := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		formatted = append(formatted, " - "+reason)
	}
	fmt.Printf(consentHeader, strings.Join(formatted, "\n\n"), databaseLocation(dataDir))

	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "y"
}

func databaseLocation(dataDir string) string {
	if dataDir == "" {
		resolved, err := config.DefaultDataDir()
		if err != nil {
			return "the data directory"
		}
		dataDir = resolved
	}
	return filepath.Join(dataDir, "index.db")
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
