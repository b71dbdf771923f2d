package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show token metadata and total supply",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var info struct {
			Name        string `json:"name"`
			Symbol      string `json:"symbol"`
			Decimals    uint8  `json:"decimals"`
			TotalSupply string `json:"total_supply"`
		}
		if err := getJSON("/token", &info); err != nil {
			return err
		}

		fmt.Printf("Name:         %s\n", info.Name)
		fmt.Printf("Symbol:       %s\n", info.Symbol)
		fmt.Printf("Decimals:     %d\n", info.Decimals)
		fmt.Printf("Total supply: %s %s\n", info.TotalSupply, info.Symbol)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Show an account balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Account string `json:"account"`
			Balance string `json:"balance"`
		}
		if err := getJSON("/accounts/"+url.PathEscape(args[0])+"/balance", &result); err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", result.Account, result.Balance)
		return nil
	},
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance <owner> <spender>",
	Short: "Show a delegated-spending allowance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{"owner": {args[0]}, "spender": {args[1]}}

		var result struct {
			Owner     string `json:"owner"`
			Spender   string `json:"spender"`
			Allowance string `json:"allowance"`
		}
		if err := getJSON("/allowance?"+query.Encode(), &result); err != nil {
			return err
		}

		fmt.Printf("%s may spend %s on behalf of %s\n", result.Spender, result.Allowance, result.Owner)
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the notification log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var notifications []struct {
			Sequence uint64 `json:"sequence"`
			Kind     string `json:"kind"`
			From     string `json:"from"`
			To       string `json:"to"`
			Owner    string `json:"owner"`
			Spender  string `json:"spender"`
			Amount   uint64 `json:"amount"`
		}
		if err := getJSON("/events", &notifications); err != nil {
			return err
		}

		// Amounts travel as base units; render them in whole tokens like
		// every other command.
		var info struct {
			Decimals uint8 `json:"decimals"`
		}
		if err := getJSON("/token", &info); err != nil {
			return err
		}

		for _, n := range notifications {
			amount := formatUnits(n.Amount, info.Decimals)
			switch n.Kind {
			case "approval":
				fmt.Printf("%4d  approval  %s -> %s  %s\n", n.Sequence, n.Owner, n.Spender, amount)
			default:
				fmt.Printf("%4d  transfer  %s -> %s  %s\n", n.Sequence, n.From, n.To, amount)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd, balanceCmd, allowanceCmd, eventsCmd)
}
