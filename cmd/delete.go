package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/store"
)

var deleteCmd = &cobra.Command{
	Use:     "delete KIND ID",
	Aliases: []string{"rm"},
	Short:   "Delete a manually added record",
	Args:    cobra.ExactArgs(2),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	kind, err := store.ParseKind(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	id, err := db.ResolveID(kind, args[1])
	if err != nil {
		return err
	}
	err = db.Delete(kind, id)
	if errors.Is(err, store.ErrManaged) {
		return fmt.Errorf("%w; remove the row from the workbook instead", err)
	}
	if err != nil {
		return err
	}

	logger.Debug("record deleted", zap.String("kind", string(kind)), zap.String("id", id))
	fmt.Printf("  Deleted %s %s\n", kind, shortID(id))
	return nil
}
