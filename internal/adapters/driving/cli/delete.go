package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var deleteAllYes bool

// stdinIsTerminal reports whether confirmation prompts can be answered.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete saved content",
	Long: `Delete one or more saved items by id.

Every id is attempted even when an earlier one fails; the failed ids are
listed and the command exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

var deleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete the whole library",
	Long: `Delete every saved item.

Asks for confirmation unless --yes is given. Refuses to run without --yes
when stdin is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: runDeleteAll,
}

func init() {
	deleteAllCmd.Flags().BoolVarP(&deleteAllYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(deleteAllCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	result := libraryService.Delete(cmd.Context(), args...)
	return outputBulkDelete(cmd, result)
}

func runDeleteAll(cmd *cobra.Command, _ []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	if !deleteAllYes {
		count, err := libraryService.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count failed: %w", err)
		}
		if count == 0 {
			cmd.Println("Library is already empty.")
			return nil
		}
		ok, err := confirm(cmd, fmt.Sprintf("Delete all %d saved item(s)?", count))
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Aborted.")
			return nil
		}
	}

	result, err := libraryService.DeleteAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return outputBulkDelete(cmd, result)
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !stdinIsTerminal() {
		return false, errors.New("refusing to prompt without a terminal; pass --yes to confirm")
	}

	cmd.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
