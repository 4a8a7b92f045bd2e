// Package main implements the bizflow CLI for manual operations against
// the bizflowd HTTP server.
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

var (
	// serverURL is the base URL for the bizflowd HTTP server
	serverURL string
	// token is an optional Bearer token forwarded as-is
	token string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bizflow",
	Short: "CLI for bizflowd HTTP server operations",
	Long: `bizflow is a command-line interface for interacting with the bizflowd HTTP server.
It converts free-form Japanese business-process text into structured business definitions.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "bizflowd server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token to send with requests")
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(healthCmd)
}

// convertCmd converts process text from a file or stdin
var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert process text into a business definition",
	Long: `Convert free-form business-process text into a structured business
definition using the bizflowd server.

Examples:
  # Convert a file
  bizflow convert process.txt

  # Convert from stdin
  echo "経費を申請し、承認されたら精算する" | bizflow convert -

  # Use a different server
  bizflow convert --server http://localhost:9090 process.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check bizflowd server health",
	Long: `Check the health status of the bizflowd HTTP server.

Examples:
  # Check health
  bizflow health

  # Check health on a different server
  bizflow health --server http://localhost:9090`,
	RunE: runHealth,
}

// ConvertRequest matches internal/http/types.go ConvertRequest
type ConvertRequest struct {
	Text string `json:"text"`
}

// HealthResponse matches internal/http/types.go HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

// runConvert handles the convert command
func runConvert(cmd *cobra.Command, args []string) error {
	var content []byte
	var err error

	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return fmt.Errorf("no text to convert")
	}

	reqJSON, err := json.Marshal(ConvertRequest{Text: string(content)})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/convert", serverURL)
	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{
		Timeout: 60 * time.Second,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	// Pretty-print the definition/logs/meta payload as returned.
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/health", serverURL)

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to %s: %v\n", url, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status: %s\n", healthResp.Status)
	fmt.Printf("Server URL: %s\n", serverURL)

	return nil
}
