package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clientdesk.org/internal/config"
	"clientdesk.org/internal/seed"
	"clientdesk.org/internal/store"
)

func newSeedCmd() *cobra.Command {
	var usersFile, clientsFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load user and client fixtures into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			if usersFile == "" {
				usersFile = cfg.Seed.UsersFile
			}
			if clientsFile == "" {
				clientsFile = cfg.Seed.ClientsFile
			}

			db, err := store.Open(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			return seed.Run(cmd.Context(), db, usersFile, clientsFile)
		},
	}

	cmd.Flags().StringVar(&usersFile, "users", "", "path to users fixture (JSON)")
	cmd.Flags().StringVar(&clientsFile, "clients", "", "path to clients fixture (JSON)")

	return cmd
}
