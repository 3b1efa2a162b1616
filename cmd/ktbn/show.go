package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/ktbn/pkg/store"
	"github.com/soundprediction/ktbn/pkg/types"
)

var (
	showIn  string
	showCPT string

	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print a template's structure",
		Long: `Show loads a template document and prints its variables and
arcs. With --cpt name:slice it also renders one conditional probability
table with user-facing axis labels.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := store.Load(showIn)
			if err != nil {
				return fmt.Errorf("loading template: %w", err)
			}

			fmt.Printf("horizon: %d\n", net.Horizon())
			fmt.Printf("variables: %s\n", strings.Join(net.Variables(), ", "))

			arcs, err := net.ArcStrings()
			if err != nil {
				return err
			}
			fmt.Println("arcs:")
			for _, a := range arcs {
				fmt.Printf("  %s\n", a)
			}

			if showCPT != "" {
				name, sliceStr, ok := strings.Cut(showCPT, ":")
				if !ok {
					return fmt.Errorf("--cpt wants name:slice, got %q", showCPT)
				}
				slice, err := strconv.Atoi(sliceStr)
				if err != nil {
					return fmt.Errorf("--cpt slice must be an integer, got %q", sliceStr)
				}
				tensor, err := net.CPT(types.Key(name, slice))
				if err != nil {
					return err
				}
				fmt.Println(tensor)
			}
			return nil
		},
	}
)

func init() {
	showCmd.Flags().StringVar(&showIn, "in", "", "template document to load")
	showCmd.Flags().StringVar(&showCPT, "cpt", "", "render one table, as name:slice")
	showCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(showCmd)
}
