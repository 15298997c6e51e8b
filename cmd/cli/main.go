package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "vidrelay",
		Short: "Vidrelay CLI - video download orchestration service",
		Long:  `A command-line interface for running downloads and inspecting history on a vidrelay server.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Run a download and print the result",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		maxSizeMB, _ := cmd.Flags().GetInt64("max-size-mb")
		maxDuration, _ := cmd.Flags().GetInt64("max-duration")
		userID, _ := cmd.Flags().GetString("user")

		payload := map[string]interface{}{
			"url": args[0],
		}
		if userID != "" {
			payload["user_id"] = userID
		}
		if maxSizeMB > 0 {
			payload["max_file_size"] = maxSizeMB << 20
		}
		if maxDuration > 0 {
			payload["max_duration_seconds"] = maxDuration
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var result map[string]interface{}
		json.Unmarshal(body, &result)

		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Download failed: %v\n", result["error"])
			if attempts, ok := result["attempts"].([]interface{}); ok {
				fmt.Fprintf(os.Stderr, "Attempts: %d\n", len(attempts))
			}
			os.Exit(1)
		}

		fmt.Printf("Download complete!\n")
		fmt.Printf("  Title:   %v\n", result["title"])
		fmt.Printf("  File:    %v\n", result["file_path"])
		fmt.Printf("  Backend: %v\n", result["backend"])
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent downloads",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		user, _ := cmd.Flags().GetString("user")

		url := fmt.Sprintf("%s/api/v1/history?limit=%d", serverURL, limit)
		if user != "" {
			url += "&user_id=" + user
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var records []map[string]interface{}
		json.Unmarshal(body, &records)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "URL\tPLATFORM\tSTATUS\tTITLE\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%v\t%v\t%s\t%v\n",
				truncate(stringField(r, "url"), 40),
				r["platform"],
				r["status"],
				truncate(stringField(r, "title"), 30),
				r["created_at"])
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/api/v1/history/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:        %v\n", stats["total"])
		fmt.Printf("  Succeeded:    %v\n", stats["succeeded"])
		fmt.Printf("  Failed:       %v\n", stats["failed"])
		fmt.Printf("  Users:        %v\n", stats["users"])
		if tp, ok := stats["top_platform"].(string); ok && tp != "" {
			fmt.Printf("  Top platform: %s\n", tp)
		}
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/health")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		fmt.Println(string(body))
	},
}

func init() {
	downloadCmd.Flags().StringP("user", "u", "", "User ID to attribute the download to")
	downloadCmd.Flags().Int64("max-size-mb", 0, "Max file size in MB (0 = server default)")
	downloadCmd.Flags().Int64("max-duration", 0, "Max duration in seconds (0 = server default)")
	historyCmd.Flags().IntP("limit", "n", 50, "Number of records to show")
	historyCmd.Flags().StringP("user", "u", "", "Filter by user ID")
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
