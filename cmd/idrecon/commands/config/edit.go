package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/cli/prompt"
	"github.com/marmos91/idrecon/pkg/config"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration file",
	Long: `Open a copy of the configuration file in an editor. The copy replaces the
file only once it loads and validates; an invalid edit can be reopened or
discarded.

The editor is taken from EDITOR, then VISUAL, and defaults to vi. Editors
that need flags are fine, e.g. EDITOR="code --wait".`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configPath(cmd)
	original, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("configuration file not found: %s\n\nCreate it first with:\n  idrecon config init --config %s", path, path)
	}
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	draft, err := os.CreateTemp(filepath.Dir(path), ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	draftPath := draft.Name()
	defer func() { _ = os.Remove(draftPath) }()
	_, err = draft.Write(original)
	if cerr := draft.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}

	out := cmd.OutOrStdout()
	for {
		if err := runEditor(draftPath); err != nil {
			return err
		}
		edited, err := os.ReadFile(draftPath)
		if err != nil {
			return err
		}
		if bytes.Equal(edited, original) {
			_, _ = fmt.Fprintln(out, "No changes made.")
			return nil
		}

		_, loadErr := config.Load(draftPath)
		if loadErr == nil {
			if err := os.Chmod(draftPath, info.Mode().Perm()); err != nil {
				return err
			}
			if err := os.Rename(draftPath, path); err != nil {
				return fmt.Errorf("failed to save %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(out, "Configuration saved to %s\n", path)
			return nil
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "The edited configuration is invalid: %v\n", loadErr)
		again, err := prompt.Confirm("Edit again", true)
		if err != nil {
			return err
		}
		if !again {
			return fmt.Errorf("edit discarded, %s is unchanged", path)
		}
	}
}

// runEditor opens path in the user's editor, attached to the terminal.
func runEditor(path string) error {
	argv := strings.Fields(editor())
	c := exec.Command(argv[0], append(argv[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to run editor %q: %w", argv[0], err)
	}
	return nil
}

func editor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}
	return "vi"
}
