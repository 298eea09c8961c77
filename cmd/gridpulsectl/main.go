// Package main implements the gridpulsectl CLI for manual operations
// against a running gridpulse server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the gridpulse HTTP server
	serverURL string
	// authToken is the bearer token for protected operations
	authToken string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridpulsectl",
	Short: "CLI for gridpulse server operations",
	Long: `gridpulsectl is a command-line interface for operating a running
gridpulse server: health checks, reseeding the energy collection and
generating the predictions aggregate.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "gridpulse server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "bearer token for protected operations")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(predictionsCmd)
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gridpulse server health",
	Long: `Check the health status of the gridpulse HTTP server.

Examples:
  # Check health
  gridpulsectl health

  # Check health on a different server
  gridpulsectl health --server http://localhost:9000`,
	RunE: runHealth,
}

// loginCmd obtains a bearer token
var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and print a bearer token",
	Long: `Log in with an email and password and print the bearer token for use
with --token on protected commands. The password is read from the
GRIDPULSE_PASSWORD environment variable.

Examples:
  GRIDPULSE_PASSWORD=s3cret gridpulsectl login admin@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// seedCmd wipes and reimports the energy collection
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Wipe and reseed the energy collection from the source CSV",
	Long: `Wipe the energy collection and reimport it from the server's source CSV.

This is destructive: every existing record is deleted first. The --yes
flag is required.

Examples:
  gridpulsectl seed --yes --token $TOKEN`,
	RunE: runSeed,
}

// predictionsCmd generates the aggregate predictions file
var predictionsCmd = &cobra.Command{
	Use:   "predictions",
	Short: "Generate the predictions aggregate on the server",
	Long: `Ask the server to generate the per-country/year predictions aggregate.
The call is idempotent: an existing file is reported, not overwritten.

Examples:
  gridpulsectl predictions`,
	RunE: runPredictions,
}

var seedYes bool

func init() {
	seedCmd.Flags().BoolVar(&seedYes, "yes", false, "confirm wiping the energy collection")
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// doRequest performs a request and decodes the JSON response body.
func doRequest(method, path string, body io.Reader) (int, map[string]any, error) {
	req, err := http.NewRequest(method, serverURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := httpClient().Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}

	payload := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(data)))
		}
	}
	return resp.StatusCode, payload, nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	status, payload, err := doRequest(http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", status)
	}
	fmt.Printf("Server is healthy: %v\n", payload["status"])
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := os.Getenv("GRIDPULSE_PASSWORD")
	if password == "" {
		return fmt.Errorf("set GRIDPULSE_PASSWORD to the account password")
	}

	body, err := json.Marshal(map[string]string{
		"email":    args[0],
		"password": password,
	})
	if err != nil {
		return err
	}

	status, payload, err := doRequest(http.MethodPost, "/login", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed: status %d: %v", status, payload["message"])
	}

	fmt.Println(payload["access_token"])
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	if !seedYes {
		return fmt.Errorf("seeding wipes the energy collection; rerun with --yes to confirm")
	}

	q := url.Values{"confirm": {"true"}}
	status, payload, err := doRequest(http.MethodPost, "/energy/seed?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		fmt.Printf("Seeded %v records\n", payload["inserted"])
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("seed requires a valid --token (try: gridpulsectl login)")
	case http.StatusNotFound:
		return fmt.Errorf("source CSV not found on the server")
	default:
		return fmt.Errorf("seed failed: status %d: %v", status, payload["message"])
	}
}

func runPredictions(cmd *cobra.Command, args []string) error {
	status, payload, err := doRequest(http.MethodGet, "/generate-predictions", nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusCreated:
		fmt.Printf("Predictions generated: %v groups\n", payload["groups"])
		return nil
	case http.StatusOK:
		fmt.Printf("%v\n", payload["message"])
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("source CSV not found on the server")
	default:
		return fmt.Errorf("generation failed: status %d: %v", status, payload["message"])
	}
}
