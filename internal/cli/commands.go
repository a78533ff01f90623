package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME [INITIAL_DEPOSIT]",
		Short: "Open a new account",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := models.Money{}
			if len(args) == 2 {
				var err error
				if initial, err = models.ParseMoney(args[1]); err != nil {
					return err
				}
			}
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			id, err := a.ledger.CreateAccount(cmd.Context(), args[0], initial)
			if err != nil {
				return err
			}
			account, err := a.ledger.Account(id)
			if err != nil {
				return err
			}
			return a.printAccount(cmd.OutOrStdout(), account)
		},
	}
}

func newDepositCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit ACCOUNT_ID AMOUNT",
		Short: "Add money to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := models.ParseMoney(args[1])
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			account, err := a.ledger.Deposit(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			return a.printAccount(cmd.OutOrStdout(), account)
		},
	}
}

func newWithdrawCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw ACCOUNT_ID AMOUNT",
		Short: "Take money out of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := models.ParseMoney(args[1])
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			account, err := a.ledger.Withdraw(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			return a.printAccount(cmd.OutOrStdout(), account)
		},
	}
}

func newTransferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer FROM_ID TO_ID AMOUNT",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := models.ParseMoney(args[2])
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			if err := a.ledger.Transfer(cmd.Context(), args[0], args[1], amount); err != nil {
				return err
			}
			from, err := a.ledger.Account(args[0])
			if err != nil {
				return err
			}
			to, err := a.ledger.Account(args[1])
			if err != nil {
				return err
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]accountView{"from": newAccountView(from), "to": newAccountView(to)})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Transferred %s from %s to %s\n", amount.Display(a.cfg.Currency), from.Name, to.Name)
			fmt.Fprintf(w, "%s: %s\n%s: %s\n", from.Name, from.Balance.Display(a.cfg.Currency), to.Name, to.Balance.Display(a.cfg.Currency))
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ACCOUNT_ID",
		Short: "Close an account whose balance is zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			if err := a.ledger.DeleteAccount(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", args[0])
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			views := []accountView{}
			for account := range a.ledger.ListAccounts() {
				views = append(views, newAccountView(account))
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBALANCE")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ID, v.Name, v.Balance.Display(a.cfg.Currency))
			}
			return tw.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ACCOUNT_ID",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			account, err := a.ledger.Account(args[0])
			if err != nil {
				return err
			}
			return a.printAccount(cmd.OutOrStdout(), account)
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history ACCOUNT_ID",
		Short: "Show the transactions of an account, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context(), cmd); err != nil {
				return err
			}
			records, err := a.ledger.History(args[0])
			if err != nil {
				return err
			}
			views := []recordView{}
			for r := range records {
				views = append(views, newRecordView(r))
			}
			if a.asJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tKIND\tAMOUNT\tCOUNTERPARTY")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Timestamp.Local().Format(time.DateTime), v.Kind, v.Amount.Display(a.cfg.Currency), v.CounterpartyID)
			}
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of ledger",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledger %s\n", Version)
		},
	}
}

func (a *app) printAccount(w io.Writer, account models.Account) error {
	if a.asJSON {
		return writeJSON(w, newAccountView(account))
	}
	_, err := fmt.Fprintf(w, "%s  %s  %s\n", account.ID, account.Name, account.Balance.Display(a.cfg.Currency))
	return err
}
