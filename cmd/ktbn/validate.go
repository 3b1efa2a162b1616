package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/ktbn/pkg/store"
)

var (
	validateIn string

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check that a template document is well formed",
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := store.Load(validateIn)
			if err != nil {
				return err
			}
			arcs, err := net.Arcs()
			if err != nil {
				return err
			}
			fmt.Printf("%s: ok (%d variables, %d slices, %d arcs)\n",
				validateIn, len(net.Variables()), net.Horizon(), len(arcs))
			return nil
		},
	}
)

func init() {
	validateCmd.Flags().StringVar(&validateIn, "in", "", "template document to load")
	validateCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(validateCmd)
}
