package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/output"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Deletes a task. Deleting the active task stops its timer. Prompts for
confirmation in interactive mode.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	b := a.sess.Board()
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}
	t, _ := b.Task(id)

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --force")
		}
		fmt.Fprintf(os.Stderr, "Delete task %s %q? [y/N] ", board.ShortID(id), t.Content)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if err := a.sess.DeleteTask(ctx, id); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":  "deleted",
			"id":      id,
			"content": t.Content,
		})
	}
	output.Messagef(os.Stdout, "Deleted task %s: %s", board.ShortID(id), t.Content)
	return nil
}
