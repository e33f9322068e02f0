package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

// NewPlatesCommand создаёт группу `plates`.
func NewPlatesCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plates",
		Short: "Inspect the plate catalog",
	}

	var sortBy string
	list := &cobra.Command{
		Use:   "list",
		Short: "List plates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := domain.ParsePlateOrder(sortBy)
			if err != nil {
				return err
			}
			rt, err := root.openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			plates, err := rt.Repos.Plates.List(cmd.Context(), order)
			if err != nil {
				return err
			}
			if plates == nil {
				plates = []domain.Plate{}
			}
			return root.render(cmd.OutOrStdout(), plates, func(w io.Writer) error {
				return printPlates(w, plates)
			})
		},
	}
	list.Flags().StringVar(&sortBy, "sort", "none", "sort order (none|name|category|category-name)")
	cmd.AddCommand(list)

	return cmd
}

// NewOrdersCommand создаёт группу `orders`.
func NewOrdersCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect orders",
	}

	var sortBy, states string
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			by, err := domain.ParseOrderSort(sortBy)
			if err != nil {
				return err
			}
			filter, err := domain.ParseStateFilter(states)
			if err != nil {
				return err
			}
			rt, err := root.openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			orders, err := rt.Repos.Orders.ListFiltered(cmd.Context(), by, filter)
			if err != nil {
				return err
			}
			return root.render(cmd.OutOrStdout(), orders, func(w io.Writer) error {
				return printOrders(w, orders)
			})
		},
	}
	list.Flags().StringVar(&sortBy, "sort", "none", "sort order (none|name|phone|date)")
	list.Flags().StringVar(&states, "state", "", "comma-separated states to show (default all)")
	cmd.AddCommand(list)

	return cmd
}

func printPlates(w io.Writer, plates []domain.Plate) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range plates {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\n", p.ID, p.Name, p.Category, p.Price)
	}
	return tw.Flush()
}

func printOrders(w io.Writer, orders []domain.Order) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tDATE\tSTATE")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.CustomerName, o.PhoneString(), o.PickupDateTime, o.State)
	}
	return tw.Flush()
}
