package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"wedding-seating/internal/handler"
	"wedding-seating/internal/seating"
	"wedding-seating/internal/storage"
	"wedding-seating/internal/whatsapp"
)

func runBot(cmd *cobra.Command, args []string) error {
	fmt.Println("🎉 Wedding Seating Bot")
	fmt.Println("======================")

	if err := os.MkdirAll(cfg.WhatsAppDataDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create WhatsApp data directory: %w", err)
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	whatsappService, err := whatsapp.NewService(ctx, &whatsapp.Config{
		DataDir: cfg.WhatsAppDataDir(),
	}, component("WhatsApp"))
	if err != nil {
		return fmt.Errorf("failed to initialize WhatsApp service: %w", err)
	}

	rsvpHandler := handler.NewRSVPHandler(whatsappService, store, &handler.Config{
		WeddingDate:     cfg.WeddingDate,
		WeddingLocation: cfg.WeddingLocation,
		BrideName:       cfg.BrideName,
		GroomName:       cfg.GroomName,
	}, component("Handler"))
	whatsappService.SetMessageHandler(rsvpHandler.HandleMessage)

	fmt.Println("Connecting to WhatsApp...")
	if err := whatsappService.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to WhatsApp: %w", err)
	}
	defer whatsappService.Disconnect()

	fmt.Println("\n✅ Connected to WhatsApp!")
	fmt.Println("The bot is now answering RSVPs and seat questions.")

	go func() {
		startCLI(ctx, os.Stdin, os.Stdout, store, rsvpHandler)
		stop()
	}()

	<-ctx.Done()
	fmt.Println("\nShutting down...")
	fmt.Println("Goodbye! 👋")
	return nil
}

// startCLI runs the interactive menu until the user exits, input ends or ctx is done.
// Lines are read on their own goroutine so a shutdown is not held up by a blocked
// read; that goroutine stays parked on in until the next line or EOF.
func startCLI(ctx context.Context, in io.Reader, out io.Writer, store *storage.Storage, rsvpHandler *handler.RSVPHandler) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprintln(out, "\nCommands:")
		fmt.Fprintln(out, "  1. Auto-assign seats")
		fmt.Fprintln(out, "  2. View tables")
		fmt.Fprintln(out, "  3. View violations")
		fmt.Fprintln(out, "  4. Send seating notices")
		fmt.Fprintln(out, "  5. Exit")
		fmt.Fprint(out, "\nEnter command (1-5): ")

		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}

		switch strings.TrimSpace(line) {
		case "1":
			autoAssign(ctx, out, store)
		case "2":
			viewTables(ctx, out, store)
		case "3":
			viewViolations(ctx, out, store)
		case "4":
			sendNotices(ctx, out, rsvpHandler)
		case "5":
			fmt.Fprintln(out, "Exiting...")
			return
		default:
			fmt.Fprintln(out, "Invalid command. Please try again.")
		}
	}
}

func autoAssign(ctx context.Context, out io.Writer, store *storage.Storage) {
	result, err := store.AutoAssign(ctx, true)
	if err != nil {
		fmt.Fprintf(out, "❌ Error assigning seats: %v\n", err)
		return
	}
	fmt.Fprintf(out, "\n✅ Seated %d guests.\n", len(result.Assignments))
	if len(result.Unplaced) > 0 {
		fmt.Fprintf(out, "⚠️  No valid table for: %s\n", strings.Join(result.Unplaced, ", "))
	}
}

func viewTables(ctx context.Context, out io.Writer, store *storage.Storage) {
	event, err := store.LoadEvent(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ Error loading tables: %v\n", err)
		return
	}
	if len(event.Tables) == 0 {
		fmt.Fprintln(out, "\nNo tables found.")
		return
	}
	printTables(out, event)
}

func viewViolations(ctx context.Context, out io.Writer, store *storage.Storage) {
	event, err := store.LoadEvent(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ Error loading seating: %v\n", err)
		return
	}
	violations := seating.Validate(event.Constraints, event.Guests, event.Tables)
	if len(violations) == 0 {
		fmt.Fprintln(out, "\n✅ No constraint violations.")
		return
	}
	printViolations(out, violations)
}

func sendNotices(ctx context.Context, out io.Writer, rsvpHandler *handler.RSVPHandler) {
	fmt.Fprintln(out, "\nSending seating notices...")
	sent, err := rsvpHandler.NotifySeating(ctx)
	fmt.Fprintf(out, "✅ Sent %d notices.\n", sent)
	if err != nil {
		fmt.Fprintf(out, "❌ Some notices failed: %v\n", err)
	}
}
