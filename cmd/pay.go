package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/fintrack/internal/store"
)

var payCmd = &cobra.Command{
	Use:   "pay ID",
	Short: "Record one more paid installment on a plan added with `fintrack add emi`",
	Args:  cobra.ExactArgs(1),
	RunE:  runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)
}

func runPay(_ *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	id, err := db.ResolveID(store.KindEMI, args[0])
	if err != nil {
		return err
	}
	paid, err := db.IncrementPaid(id)
	if errors.Is(err, store.ErrManaged) {
		return fmt.Errorf("%w; edit the paid count in the workbook instead", err)
	}
	if errors.Is(err, store.ErrIncomplete) {
		return fmt.Errorf("%w; re-add the plan with --paid to start tracking it", err)
	}
	if err != nil {
		return err
	}

	logger.Debug("installment recorded", zap.String("id", id), zap.Int("paid", paid))
	fmt.Printf("  Plan %s: %d installments paid\n", shortID(id), paid)
	return nil
}
