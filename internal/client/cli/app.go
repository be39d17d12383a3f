package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/faktur-app/faktur/internal/client/config"
	"github.com/faktur-app/faktur/internal/client/connectivity"
	"github.com/faktur-app/faktur/internal/client/realtime"
	"github.com/faktur-app/faktur/internal/client/remote"
	"github.com/faktur-app/faktur/internal/client/services"
	"github.com/faktur-app/faktur/internal/client/store"
	syncpkg "github.com/faktur-app/faktur/internal/client/sync"
	"github.com/faktur-app/faktur/internal/client/syncstate"
	"github.com/faktur-app/faktur/internal/client/ui"
	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"

	_ "modernc.org/sqlite"
)

// App wires the local cache, the remote API clients, the per-family
// services and the connectivity machinery together behind the REPL.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	customers *services.Service[models.Customer, models.CustomerRequest]
	items     *services.Service[models.Item, models.ItemRequest]
	invoices  *services.InvoiceService

	monitor *connectivity.Monitor
	channel *realtime.Channel
	pubs    map[common.Family]*syncstate.Publisher
	syncers []syncpkg.Syncer

	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds a fully wired application reading from stdin and writing to
// stdout.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	return newApp(ctx, c, log, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := store.Open(ctx, c.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}

	customerStore := store.New(db, common.FamilyCustomers, models.ValidateCustomer)
	itemStore := store.New(db, common.FamilyItems, models.ValidateItem)
	invoiceStore := store.New(db, common.FamilyInvoices, models.ValidateInvoice)
	counter := store.NewInvoiceCounter(db)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	customerAPI := remote.NewAPI[models.Customer](c.ServerEndpointAddr, common.FamilyCustomers, httpClient)
	itemAPI := remote.NewAPI[models.Item](c.ServerEndpointAddr, common.FamilyItems, httpClient)
	invoiceAPI := remote.NewAPI[models.Invoice](c.ServerEndpointAddr, common.FamilyInvoices, httpClient)

	reader := bufio.NewReader(in)
	prompt := ui.NewTerminalPrompter(reader, out)
	notify := ui.NewTerminalNotifier(out)

	pubs := make(map[common.Family]*syncstate.Publisher)
	attach := func(family common.Family, s interface {
		GetIsSynced(ctx context.Context) (bool, error)
		OnSyncStateChange(fn func(bool))
	}) error {
		synced, err := s.GetIsSynced(ctx)
		if err != nil {
			return err
		}
		p := syncstate.NewPublisher(synced)
		s.OnSyncStateChange(p.Publish)
		pubs[family] = p
		return nil
	}
	if err := attach(common.FamilyCustomers, customerStore); err != nil {
		return nil, err
	}
	if err := attach(common.FamilyItems, itemStore); err != nil {
		return nil, err
	}
	if err := attach(common.FamilyInvoices, invoiceStore); err != nil {
		return nil, err
	}

	syncers := []syncpkg.Syncer{
		syncpkg.NewOrchestrator(customerStore, customerAPI, notify, log),
		syncpkg.NewOrchestrator(itemStore, itemAPI, notify, log),
		syncpkg.NewOrchestrator(invoiceStore, invoiceAPI, notify, log),
	}

	a := &App{
		config:  c,
		log:     log,
		db:      db,
		pubs:    pubs,
		syncers: syncers,
		reader:  reader,
		out:     out,
	}

	// The monitor is the single Connectivity source for every service, so
	// it is built first and the services register as refreshers afterwards.
	a.monitor = connectivity.NewMonitor(syncers, nil, log)

	a.invoices = services.NewInvoiceService(invoiceStore, invoiceAPI, counter, a.monitor, prompt, notify, log)
	a.customers = services.NewCustomerService(customerStore, customerAPI, a.monitor, prompt, notify, log, a.invoices)
	a.items = services.NewItemService(itemStore, itemAPI, a.monitor, prompt, notify, log)

	a.monitor.Register(a.customers)
	a.monitor.Register(a.items)
	a.monitor.Register(a.invoices.Service)

	a.channel = realtime.NewChannel(c.RealtimeEndpointAddr, c.RedialInterval, log)

	return a, nil
}

// Run starts the realtime signal, the connectivity monitor and the REPL.
// It returns when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	for _, init := range []func(context.Context) error{
		a.customers.Init, a.items.Init, a.invoices.Init,
	} {
		if err := init(ctx); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan connectivity.Event, 8)
	go a.channel.Run(ctx, events)
	go a.monitor.Run(ctx, events)
	a.watchSyncState(ctx)

	fmt.Fprintln(a.out, "Faktur CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

// watchSyncState logs every per-family sync transition for the lifetime of
// the REPL. The prompt's dirty marker reads the current value; this is the
// change feed.
func (a *App) watchSyncState(ctx context.Context) {
	for family, p := range a.pubs {
		_, changes, unsubscribe := p.Subscribe()
		go func(f common.Family) {
			defer unsubscribe()
			for {
				select {
				case <-ctx.Done():
					return
				case synced, ok := <-changes:
					if !ok {
						return
					}
					if synced {
						a.log.Info(ctx, "all changes synced", "family", f)
					} else {
						a.log.Info(ctx, "local changes pending", "family", f)
					}
				}
			}
		}(family)
	}
}

// status renders the prompt suffix: connectivity plus a dirty marker when
// any family has unreconciled local changes.
func (a *App) status() string {
	mode := "offline"
	if a.monitor.Connected() {
		mode = "online"
	}
	for _, p := range a.pubs {
		if !p.Current() {
			return mode + " *"
		}
	}
	return mode
}

// Status prints the connectivity state plus the per-family sync state.
func (a *App) Status(ctx context.Context) error {
	mode := "offline"
	if a.monitor.Connected() {
		mode = "online"
	}
	fmt.Fprintln(a.out, "Connection:", mode)
	for _, family := range common.Families {
		state := "synced"
		if !a.pubs[family].Current() {
			state = "pending changes"
		}
		fmt.Fprintf(a.out, "  %-10s %s\n", family, state)
	}
	return nil
}

// Sync triggers reconciliation for every family by hand. Normally the
// monitor does this on reconnection; the command exists for peace of mind.
func (a *App) Sync(ctx context.Context) error {
	if !a.monitor.Connected() {
		fmt.Fprintln(a.out, "Offline: changes will sync automatically on reconnection.")
		return nil
	}
	for _, s := range a.syncers {
		if err := s.Sync(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, "Sync complete.")
	return nil
}
