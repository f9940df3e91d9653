package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mauv0809/kart-scoreboard/internal/auth"
	"github.com/mauv0809/kart-scoreboard/internal/database"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
	"github.com/spf13/cobra"
)

var dbName string

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(hashPasswordCmd)

	createAdminCmd.Flags().StringVar(&dbName, "db", "./scoreboard.db", "Path to the SQLite database")
	rootCmd.AddCommand(createAdminCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the groups on the scoreboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/groups")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List all registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from stdin and print its bcrypt hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <username>",
	Short: "Create an admin user in the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"))
		if err != nil {
			return err
		}
		defer teardown()

		store := scoreboard.New(db)
		if err := store.CreateAdminUser(args[0], hash); err != nil {
			return err
		}
		fmt.Printf("Admin user %q created\n", args[0])
		return nil
	},
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
