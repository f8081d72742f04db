package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wardops/wardops/internal/config"
	"github.com/wardops/wardops/internal/demo"
	"github.com/wardops/wardops/internal/store"
)

var demoSeed int64 // Seed for the demo dataset generator

// seedCmd wipes the database and loads the deterministic demo day.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database and load the demo dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		st, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		demoCfg := demo.DefaultConfig()
		demoCfg.Seed = demoSeed
		ds, err := demo.NewLoader(st).Load(context.Background(), demoCfg)
		if err != nil {
			return err
		}
		logrus.Infof("Seeded unit %s: %d beds, %d nurses, %d patients, %d events",
			ds.Unit.Name, len(ds.Beds), len(ds.Nurses), len(ds.Patients), len(ds.Events))
		return nil
	},
}

func init() {
	seedCmd.Flags().Int64Var(&demoSeed, "seed", 42, "Seed for the demo dataset generator")
	rootCmd.AddCommand(seedCmd)
}
