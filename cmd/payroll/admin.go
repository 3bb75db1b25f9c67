package main

import (
	"errors"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the statutory tables in effect as YAML",
		Long: "Prints the tables the calculators would use, after applying --tables or\n" +
			"PAYROLL_TABLES_FILE over the built-in defaults. The output is a valid tables file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(cmd)
			if err != nil {
				return err
			}
			data, err := config.MarshalTables(tables)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL tables",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if a.db == nil {
				return errors.New("migrate needs a postgres store")
			}
			if err := postgresql.Migrate(cmd.Context(), a.db); err != nil {
				return err
			}
			a.logger.Info("schema applied")
			return nil
		}),
	}
}
