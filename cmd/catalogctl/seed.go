package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/absign/storefront/internal/platform/config"
	pfirestore "github.com/absign/storefront/internal/platform/firestore"
	"github.com/absign/storefront/internal/repositories"
	firestoreRepo "github.com/absign/storefront/internal/repositories/firestore"
	"github.com/absign/storefront/internal/repositories/memory"
	"github.com/absign/storefront/internal/repositories/seed"
)

type seedOptions struct {
	file         string
	project      string
	emulatorHost string
	dryRun       bool
	timeout      time.Duration
}

func newSeedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML fixture into the catalog store",
		Long: `Load company info, company profiles, categories, suppliers, products and SEO
entries from a YAML fixture into Firestore.

With --dry-run the fixture is applied to an in-memory store instead, which validates
references and slugs without touching Firestore.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "path to the YAML fixture")
	cmd.Flags().StringVar(&opts.project, "firestore-project", "", "Firestore project id (defaults to GOOGLE_CLOUD_PROJECT)")
	cmd.Flags().StringVar(&opts.emulatorHost, "firestore-emulator", "", "Firestore emulator host:port")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "apply to an in-memory store only")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSeed(cmd *cobra.Command, opts seedOptions) error {
	fx, err := seed.LoadFile(strings.TrimSpace(opts.file))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	var reg repositories.Registry
	if opts.dryRun {
		reg = memory.NewStore()
	} else {
		provider := pfirestore.NewProvider(config.FirestoreConfig{
			ProjectID:    opts.project,
			EmulatorHost: opts.emulatorHost,
		})
		registry, err := firestoreRepo.NewRegistry(provider)
		if err != nil {
			return err
		}
		reg = registry
	}
	defer func() { _ = reg.Close(context.Background()) }()

	sum, err := seed.Apply(ctx, reg, fx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d companies, %d categories, %d suppliers, %d products, %d seo entries\n",
		sum.Companies, sum.Categories, sum.Suppliers, sum.Products, sum.SeoEntries)
	return nil
}
