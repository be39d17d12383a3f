package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	Customers(ctx context.Context) error
	AddCustomer(ctx context.Context) error
	EditCustomer(ctx context.Context) error
	DeleteCustomer(ctx context.Context) error

	Items(ctx context.Context) error
	AddItem(ctx context.Context) error
	EditItem(ctx context.Context) error
	DeleteItem(ctx context.Context) error

	Invoices(ctx context.Context) error
	AddInvoice(ctx context.Context) error
	EditInvoice(ctx context.Context) error
	DeleteInvoice(ctx context.Context) error
	ShowInvoice(ctx context.Context) error

	Status(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Faktur CLI.
//
// It reads a line from the provided reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF, on ctx cancellation, or when the
// user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn): online/offline plus
// a '*' marker when unreconciled local changes exist.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "faktur (%s) > ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			fmt.Fprintln(w, "Available commands:")
			fmt.Fprintln(w, "  (c)ustomers, addcustomer, editcustomer, delcustomer")
			fmt.Fprintln(w, "  (i)tems, additem, edititem, delitem")
			fmt.Fprintln(w, "  invoices, addinvoice, editinvoice, delinvoice, show")
			fmt.Fprintln(w, "  status, sync, exit")

		case "c", "customers":
			_ = a.Customers(ctx)
		case "addcustomer":
			_ = a.AddCustomer(ctx)
		case "editcustomer":
			_ = a.EditCustomer(ctx)
		case "delcustomer":
			_ = a.DeleteCustomer(ctx)

		case "i", "items":
			_ = a.Items(ctx)
		case "additem":
			_ = a.AddItem(ctx)
		case "edititem":
			_ = a.EditItem(ctx)
		case "delitem":
			_ = a.DeleteItem(ctx)

		case "invoices":
			_ = a.Invoices(ctx)
		case "addinvoice":
			_ = a.AddInvoice(ctx)
		case "editinvoice":
			_ = a.EditInvoice(ctx)
		case "delinvoice":
			_ = a.DeleteInvoice(ctx)
		case "show":
			_ = a.ShowInvoice(ctx)

		case "status":
			_ = a.Status(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
