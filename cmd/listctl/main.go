// Command listctl browses the procurement list endpoints from a terminal.
// Applied filters are remembered per screen in a local SQLite file and
// restored on the next run until -reset is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/simp-lee/logger"

	"github.com/simp-lee/procurebase/internal/config"
	"github.com/simp-lee/procurebase/internal/domain"
	"github.com/simp-lee/procurebase/internal/httpclient"
	"github.com/simp-lee/procurebase/internal/kvstore"
	"github.com/simp-lee/procurebase/internal/listquery"
	"github.com/simp-lee/procurebase/internal/listscreen"
)

type options struct {
	configPath  string
	statePath   string
	screen      string
	search      string
	page        int
	requisition uint64
	reset       bool
	filters     filterFlags
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("listctl", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "configs/config.yaml", "path to configuration file")
	fs.StringVar(&o.statePath, "state", "data/listctl.db", "path to the SQLite file remembering applied filters")
	fs.StringVar(&o.screen, "screen", screenVendors, "list to show: vendors or purchase-orders")
	fs.StringVar(&o.search, "search", "", "search text")
	fs.IntVar(&o.page, "page", 1, "page number")
	fs.Uint64Var(&o.requisition, "requisition", 0, "restrict purchase orders to one requisition")
	fs.BoolVar(&o.reset, "reset", false, "clear the remembered filters")
	fs.Var(&o.filters, "filter", "filter as id=value; repeatable (ranges use lo..hi, checkboxes a,b)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.page < 1 {
		return nil, fmt.Errorf("invalid page %d", o.page)
	}
	if o.reset && len(o.filters) > 0 {
		return nil, errors.New("-reset and -filter are mutually exclusive")
	}
	if o.requisition != 0 && o.screen != screenPurchaseOrders {
		return nil, errors.New("-requisition only applies to the purchase-orders screen")
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, o, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, o *options, out io.Writer) error {
	// stdout carries the table.
	lg, err := config.SetupLogger(&cfg.Log, logger.WithConsoleWriter(os.Stderr))
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer lg.Close()

	store, closeStore, err := openStateStore(o.statePath, lg.Logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := httpclient.New(httpclient.Config{
		BaseURL:  cfg.Client.BaseURL,
		Timeout:  cfg.Client.TimeoutDuration(),
		RetryMax: cfg.Client.RetryMax,
	}, lg.Logger)
	if err != nil {
		return err
	}

	sc := listscreen.Config{
		Key:        o.screen,
		Limit:      cfg.Client.PageLimit,
		Store:      store,
		SearchWait: cfg.Client.SearchDebounceDuration(),
		Logger:     lg.Logger,
	}

	switch o.screen {
	case screenVendors:
		sc.Endpoint = "/vendors"
		sc.Filters = vendorFilters()
		st, err := browse[domain.Vendor](ctx, client, sc, o)
		if err != nil {
			return err
		}
		printVendors(out, st)
	case screenPurchaseOrders:
		sc.Endpoint = "/purchase-orders"
		sc.Filters = purchaseOrderFilters()
		if o.requisition != 0 {
			sc.ListOptions = append(sc.ListOptions, listquery.WithExtraParams(map[string]string{
				"requisitionid": strconv.FormatUint(o.requisition, 10),
			}))
		}
		st, err := browse[domain.PurchaseOrder](ctx, client, sc, o)
		if err != nil {
			return err
		}
		printPurchaseOrders(out, st)
	default:
		return fmt.Errorf("unknown screen %q", o.screen)
	}
	return nil
}

// browse drives one screen the way a user would: adjust filters, type the
// search text, move to the page, then wait for the last fetch to settle.
func browse[T any](ctx context.Context, getter listquery.Getter, sc listscreen.Config, o *options) (listquery.State[T], error) {
	screen, err := listscreen.New[T](ctx, getter, sc)
	if err != nil {
		return listquery.State[T]{}, err
	}
	defer screen.Close()

	fetched := false
	switch {
	case o.reset:
		if err := screen.ResetFilters(ctx); err != nil {
			return listquery.State[T]{}, err
		}
		fetched = true
	case len(o.filters) > 0:
		screen.OpenFilters()
		for _, f := range o.filters {
			if err := applyFilterFlag(screen.Filters(), f); err != nil {
				screen.Filters().Discard()
				return listquery.State[T]{}, err
			}
		}
		if err := screen.ApplyFilters(ctx); err != nil {
			return listquery.State[T]{}, err
		}
		fetched = true
	}

	if o.search != "" {
		screen.TypeSearch(o.search)
		screen.FlushSearch()
		fetched = true
	}
	if o.page > 1 {
		screen.SetPage(o.page)
		fetched = true
	}
	if !fetched {
		screen.Start()
	}

	done := make(chan struct{})
	go func() {
		screen.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return listquery.State[T]{}, ctx.Err()
	}

	st := screen.State()
	if st.Err != nil {
		return st, st.Err
	}
	return st, nil
}

// openStateStore opens the SQLite file that remembers applied filters.
func openStateStore(path string, log *slog.Logger) (kvstore.Store, func(), error) {
	db, err := config.SetupDatabase(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: path},
		Pool:   config.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1},
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("state store close error", slog.Any("error", err))
			}
		}
	}
	if err := db.AutoMigrate(&kvstore.Entry{}); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate state store: %w", err)
	}
	return kvstore.NewGormStore(db), closeFn, nil
}
