package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/ktbn/pkg/config"
	"github.com/soundprediction/ktbn/pkg/store"
)

var (
	unrollIn     string
	unrollOut    string
	unrollSlices int

	unrollCmd = &cobra.Command{
		Use:   "unroll",
		Short: "Unroll a template into a flat network",
		Long: `Unroll loads a template document, extends it to the requested
number of time slices by repeating its transition pattern, and writes the
flat result as a new document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			net, err := store.Load(unrollIn)
			if err != nil {
				return fmt.Errorf("loading template: %w", err)
			}
			logger.Info("loaded template", "path", unrollIn,
				"horizon", net.Horizon(), "variables", len(net.Variables()))

			flat, err := net.Unroll(unrollSlices)
			if err != nil {
				return err
			}
			doc, err := store.EncodeEngine(flat, net.Codec())
			if err != nil {
				return err
			}
			if err := store.SaveDocument(unrollOut, doc); err != nil {
				return err
			}
			fmt.Printf("unrolled %s (k=%d) to %d slices: %s\n",
				unrollIn, net.Horizon(), unrollSlices, unrollOut)
			return nil
		},
	}
)

func init() {
	unrollCmd.Flags().StringVar(&unrollIn, "in", "", "template document to load")
	unrollCmd.Flags().StringVar(&unrollOut, "out", "", "where to write the flat document")
	unrollCmd.Flags().IntVar(&unrollSlices, "slices", 0, "total number of time slices")
	unrollCmd.MarkFlagRequired("in")
	unrollCmd.MarkFlagRequired("out")
	unrollCmd.MarkFlagRequired("slices")
	rootCmd.AddCommand(unrollCmd)
}
