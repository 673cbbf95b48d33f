// Command lumenera is the storefront backend CLI.
//
//	lumenera serve        start the HTTP server
//	lumenera seed         seed the store with starter data
//	lumenera route:list   print all registered named routes
//	lumenera queue:failed print the dead-letter queue
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenera/backend/app/routes"
	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/database/seeders"
	"github.com/lumenera/backend/internal/server"
	"github.com/lumenera/backend/pkg/database"
	"github.com/lumenera/backend/pkg/queue"
	"github.com/lumenera/backend/pkg/router"
	"github.com/lumenera/backend/pkg/ws"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lumenera",
	Short: "Lumenera — trading-card storefront backend",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(queueFailedCmd)
}

// bootStore loads config and connects the document store.
func bootStore() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// lumenera serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// lumenera seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all registered seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootStore(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		fmt.Println("Seeding…")
		return seeders.RunAll(ctx, database.DB)
	},
}

// lumenera route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootStore(); err != nil {
			return err
		}
		r := router.New()
		routes.RegisterAPI(r, ws.NewHub())

		table := r.Routes()
		if len(table) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return table[names[i]] < table[names[j]] })

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PATH\tNAME")
		fmt.Fprintln(w, "----\t----")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", table[name], name)
		}
		return w.Flush()
	},
}

// lumenera queue:failed
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "Print in-memory failed jobs from this process",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := queue.FailedJobs()
		if len(failed) == 0 {
			fmt.Println("No failed jobs.")
			return nil
		}
		for _, f := range failed {
			fmt.Printf("%T  attempts=%d  at=%s  err=%v\n", f.Job, f.Attempts, f.FailedAt.Format(time.RFC3339), f.Err)
		}
		return nil
	},
}
