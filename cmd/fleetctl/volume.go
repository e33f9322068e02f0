package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/repository"
)

const (
	opPlateInsert  = "plate.insert"
	opOrderInsert  = "order.insert"
	opDetailInsert = "order_detail.insert"

	// Первый номер телефона прогона; номера идут подряд и остаются девятизначными.
	volumePhoneBase = int64(600000000)
)

type volumeOptions struct {
	plates      int
	orders      int
	concurrency int
	output      string
}

// NewVolumeCommand создаёт команду `volume`: вставляет блюда, затем заказы
// с двумя позициями каждый и печатает отчёт об исходах записей.
func NewVolumeCommand(root *RootOptions) *cobra.Command {
	opts := volumeOptions{}

	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Run a write volume test through the writer queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			rt, err := root.openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			result := runVolume(cmd.Context(), rt.Repos, opts, time.Now())
			result.Storage = root.Storage

			if opts.output != "" {
				if err := writeJSONReport(opts.output, result); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
			return root.render(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return printVolumeReport(w, result)
			})
		},
	}

	cmd.Flags().IntVar(&opts.plates, "plates", 100, "plates to insert")
	cmd.Flags().IntVar(&opts.orders, "orders", 2000, "orders to insert, each with two details")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 8, "concurrent submitters")
	cmd.Flags().StringVar(&opts.output, "output", "", "also write the JSON report to this file")

	return cmd
}

func (o volumeOptions) validate() error {
	if o.plates < 2 {
		return fmt.Errorf("plates must be >= 2")
	}
	if o.orders < 0 {
		return fmt.Errorf("orders must be >= 0")
	}
	if o.concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0")
	}
	return nil
}

func runVolume(ctx context.Context, repos *repository.Repositories, opts volumeOptions, now time.Time) volumeReport {
	c := newCollector()
	startedAt := time.Now()

	plates := make([]domain.Plate, opts.plates)
	fanOut(opts.plates, opts.concurrency, func(i int) {
		plate := volumePlate(i)
		started := time.Now()
		outcome := repos.Plates.InsertAndWait(ctx, plate)
		c.record(opPlateInsert, time.Since(started), outcome)
		if outcome.OK() {
			plate.ID = outcome.Value
			plates[i] = plate
		}
	})

	inserted := make([]domain.Plate, 0, len(plates))
	for _, p := range plates {
		if p.ID > 0 {
			inserted = append(inserted, p)
		}
	}

	pickup := domain.FormatPickup(now.Add(24 * time.Hour))
	fanOut(opts.orders, opts.concurrency, func(i int) {
		order := domain.Order{
			CustomerName:   fmt.Sprintf("Cliente %d", i+1),
			Phone:          volumePhoneBase + int64(i%100000000),
			PickupDateTime: pickup,
			State:          domain.OrderStateRequested,
		}
		started := time.Now()
		outcome := repos.Orders.InsertAndWait(ctx, order)
		c.record(opOrderInsert, time.Since(started), outcome)
		if !outcome.OK() || len(inserted) < 2 {
			return
		}

		orderID := outcome.Value
		for k := 0; k < 2; k++ {
			plate := inserted[(i+k)%len(inserted)]
			started := time.Now()
			outcome := repos.Bridge.Await(ctx, repos.Details.AddPlate(ctx, orderID, plate))
			c.record(opDetailInsert, time.Since(started), outcome)
		}
	})

	result := c.buildReport(startedAt, time.Since(startedAt))
	result.Plates = c.completed(opPlateInsert)
	result.Orders = c.completed(opOrderInsert)
	result.Details = c.completed(opDetailInsert)
	return result
}

func volumePlate(i int) domain.Plate {
	return domain.Plate{
		Name:     fmt.Sprintf("Plato %d", i+1),
		Category: domain.Categories[i%len(domain.Categories)],
		Price:    float64(1+i%20) + 0.5,
	}
}

// fanOut вызывает fn для индексов [0, n) не более чем в workers горутинах.
func fanOut(n, workers int, fn func(i int)) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
