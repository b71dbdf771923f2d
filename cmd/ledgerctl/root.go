package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Client for the token ledger HTTP API",
	Long: `ledgerctl talks to a running token ledger server.

Examples:
  ledgerctl token
  ledgerctl balance 0x1111111111111111111111111111111111111111
  ledgerctl transfer --from 0x11... --to 0x22... --amount 100
  ledgerctl approve --owner 0x11... --spender 0x33... --amount 10.5
  ledgerctl events`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if env := os.Getenv("LEDGER_SERVER_URL"); env != "" {
		serverURL = env
	} else {
		serverURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", serverURL, "ledger server base URL")
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// getJSON fetches a path and decodes the response into out.
func getJSON(path string, out any) error {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// postJSON posts a JSON body to a path and decodes the response into out.
func postJSON(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := httpClient.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
