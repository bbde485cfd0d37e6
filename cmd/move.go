package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/output"
)

var moveCmd = &cobra.Command{
	Use:   "move ID TARGET",
	Short: "Move a task onto another task or column",
	Long: `Drops task ID onto TARGET, exactly like dragging it on the board.

TARGET is a column id (queue, inProgress, review, done) to drop at the end of
that column, or a task id to drop onto that task. Moving a task into
In Progress selects it; moving the active task out of In Progress stops its
timer.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // ID and TARGET
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

// moveResult is the outcome of a move.
type moveResult struct {
	ID       string `json:"id"`
	Moved    bool   `json:"moved"`
	From     string `json:"from"`
	To       string `json:"to"`
	Position int    `json:"position"`
	Active   bool   `json:"active"`
}

func runMove(_ *cobra.Command, args []string) error {
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
	over, err := resolveTarget(b, args[1])
	if err != nil {
		return err
	}
	from, _ := b.FindColumnOf(id)

	moved, err := a.sess.Commit(ctx, id, over)
	if err != nil {
		return err
	}

	it, _ := findItem(a.sess.Board(), id)
	res := moveResult{
		ID:       id,
		Moved:    moved,
		From:     from,
		To:       it.Column,
		Position: it.Position,
		Active:   a.sess.ActiveTaskID() == id,
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, res)
	}
	if !moved {
		output.Messagef(os.Stdout, "Task %s unchanged", board.ShortID(id))
		return nil
	}
	output.Messagef(os.Stdout, "Moved task %s: %s -> %s (position %d)",
		board.ShortID(id), res.From, res.To, res.Position+1)
	if res.Active && res.From != res.To {
		output.Messagef(os.Stdout, "Selected %s", it.Content)
	}
	return nil
}

// resolveTarget maps a drop target to a column id or a task id.
func resolveTarget(b board.Board, ref string) (string, error) {
	if _, ok := b.Columns[ref]; ok {
		return ref, nil
	}
	return resolveTask(b, ref)
}
