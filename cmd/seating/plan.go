package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wedding-seating/internal/models"
	"wedding-seating/internal/seating"
)

// readEventFile decodes a YAML event. Guests without a status are pending.
func readEventFile(path string) (models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to open event file: %w", err)
	}
	defer f.Close()

	var event models.Event
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&event); err != nil {
		return models.Event{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i := range event.Guests {
		if event.Guests[i].RSVPStatus == "" {
			event.Guests[i].RSVPStatus = models.RSVPPending
		}
	}
	for i := range event.Tables {
		event.Tables[i].Normalize()
	}
	return event, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	event, err := readEventFile(eventFile)
	if err != nil {
		return err
	}
	return writePlan(cmd.OutOrStdout(), event)
}

// writePlan prints the proposed seats, the guests left over and any constraint
// still broken once the proposal is applied
func writePlan(out io.Writer, event models.Event) error {
	result := seating.ComputeAutoAssignments(event)

	roster := seating.NewRoster(event.Guests, event.Tables)
	if err := roster.Apply(result.Assignments); err != nil {
		return fmt.Errorf("proposed seating does not apply: %w", err)
	}
	planned := roster.Event(event)

	fmt.Fprintf(out, "📋 Proposed assignments (%d):\n", len(result.Assignments))
	for _, a := range result.Assignments {
		guest, _ := roster.Guest(a.GuestID)
		fmt.Fprintf(out, "  %-24s → %s, seat %d\n", guest.Name, a.TableID, a.SeatIndex+1)
	}
	if len(result.Unplaced) > 0 {
		fmt.Fprintf(out, "\n⚠️  Unplaced (%d): %s\n", len(result.Unplaced), strings.Join(result.Unplaced, ", "))
	}

	printTables(out, planned)

	violations := seating.Validate(planned.Constraints, planned.Guests, planned.Tables)
	if len(violations) == 0 {
		fmt.Fprintln(out, "\n✅ No constraint violations.")
		return nil
	}
	printViolations(out, violations)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	event, err := readEventFile(eventFile)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ImportEvent(cmd.Context(), event); err != nil {
		return fmt.Errorf("failed to import %s: %w", eventFile, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d guests and %d tables from %s\n", len(event.Guests), len(event.Tables), eventFile)
	return nil
}

func printTables(out io.Writer, event models.Event) {
	names := make(map[string]string, len(event.Guests))
	for _, g := range event.Guests {
		names[g.ID] = g.Name
	}

	fmt.Fprintf(out, "\n🪑 Tables (%d total):\n", len(event.Tables))
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, t := range event.Tables {
		fmt.Fprintf(out, "%s (%s) %d/%d\n", t.Name, t.Shape, len(t.AssignedGuestIDs), t.Capacity)
		for _, id := range t.AssignedGuestIDs {
			fmt.Fprintf(out, "  - %s\n", names[id])
		}
		fmt.Fprintln(out, strings.Repeat("-", 60))
	}
}

func printViolations(out io.Writer, violations []seating.Violation) {
	fmt.Fprintf(out, "\n❌ Constraint violations (%d):\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(out, "  - %s\n", v.Message)
	}
}
