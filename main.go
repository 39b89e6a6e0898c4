package main

import (
	"fmt"
	"os"

	"fjacquet/fintrack/cmd/categories"
	"fjacquet/fintrack/cmd/dashboard"
	"fjacquet/fintrack/cmd/export"
	"fjacquet/fintrack/cmd/migrate"
	"fjacquet/fintrack/cmd/report"
	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/cmd/serve"
	"fjacquet/fintrack/cmd/users"
	"fjacquet/fintrack/internal/config"
)

func init() {
	// .env must be loaded before flags read their defaults
	config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(migrate.Cmd)
	root.Cmd.AddCommand(users.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(dashboard.Cmd)
	root.Cmd.AddCommand(dashboard.SummaryCmd)
	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
