package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	txFrom    string
	txTo      string
	txOwner   string
	txSpender string
	txAmount  string
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer tokens between accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"from": txFrom, "to": txTo, "amount": txAmount}
		if err := postJSON("/transfers", body, nil); err != nil {
			return err
		}
		fmt.Printf("transferred %s from %s to %s\n", txAmount, txFrom, txTo)
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Set a delegated-spending allowance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"owner": txOwner, "spender": txSpender, "amount": txAmount}
		if err := postJSON("/approvals", body, nil); err != nil {
			return err
		}
		fmt.Printf("approved %s for %s on behalf of %s\n", txAmount, txSpender, txOwner)
		return nil
	},
}

var transferFromCmd = &cobra.Command{
	Use:   "transfer-from",
	Short: "Spend an allowance to move tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"spender": txSpender, "from": txFrom, "to": txTo, "amount": txAmount}
		if err := postJSON("/delegated-transfers", body, nil); err != nil {
			return err
		}
		fmt.Printf("transferred %s from %s to %s (spender %s)\n", txAmount, txFrom, txTo, txSpender)
		return nil
	},
}

func init() {
	transferCmd.Flags().StringVar(&txFrom, "from", "", "sender address")
	transferCmd.Flags().StringVar(&txTo, "to", "", "recipient address")
	transferCmd.Flags().StringVar(&txAmount, "amount", "", "amount in whole tokens")
	transferCmd.MarkFlagRequired("from")
	transferCmd.MarkFlagRequired("to")
	transferCmd.MarkFlagRequired("amount")

	approveCmd.Flags().StringVar(&txOwner, "owner", "", "allowance owner address")
	approveCmd.Flags().StringVar(&txSpender, "spender", "", "spender address")
	approveCmd.Flags().StringVar(&txAmount, "amount", "", "amount in whole tokens")
	approveCmd.MarkFlagRequired("owner")
	approveCmd.MarkFlagRequired("spender")
	approveCmd.MarkFlagRequired("amount")

	transferFromCmd.Flags().StringVar(&txSpender, "spender", "", "spender address")
	transferFromCmd.Flags().StringVar(&txFrom, "from", "", "source account address")
	transferFromCmd.Flags().StringVar(&txTo, "to", "", "recipient address")
	transferFromCmd.Flags().StringVar(&txAmount, "amount", "", "amount in whole tokens")
	transferFromCmd.MarkFlagRequired("spender")
	transferFromCmd.MarkFlagRequired("from")
	transferFromCmd.MarkFlagRequired("to")
	transferFromCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(transferCmd, approveCmd, transferFromCmd)
}
