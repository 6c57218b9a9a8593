package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const timeLayout = "2006-01-02 15:04:05"

// Shell is the interactive presentation collaborator: a menu loop that
// parses operator input, invokes the service and renders results as text.
// It performs its own validation and never reaches into facility state.
type Shell struct {
	service   *InstrumentedService
	scanner   *bufio.Scanner
	telemetry *TelemetryProvider
}

func NewShell(service *InstrumentedService, telemetry *TelemetryProvider) *Shell {
	return &Shell{
		service:   service,
		scanner:   bufio.NewScanner(os.Stdin),
		telemetry: telemetry,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	fmt.Printf("Smart Parking System - Slots: %d, Waiting: %d\n",
		s.service.Capacity(), s.service.WaitCapacity())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.printMenu()
		choice, ok := s.readInt("Choice: ")
		if !ok {
			return
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.command",
			trace.WithAttributes(attribute.Int("menu.choice", choice)))
		quit := s.dispatch(cmdCtx, choice)
		cmdSpan.End()
		if quit {
			return
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Println("\n--- MENU ---")
	fmt.Println("1 Entry\n2 Exit\n3 History\n4 Slot Map\n5 Search Vehicle\n6 Revenue\n7 Parked Vehicles\n8 Waiting Queue\n9 Add Monthly Pass\n10 Emergency Reset\n11 Free Slots\n12 Quit")
}

// dispatch runs one menu command; returns true when the operator quits.
func (s *Shell) dispatch(ctx context.Context, choice int) bool {
	switch choice {
	case 1:
		s.handleEntry(ctx)
	case 2:
		s.handleExit(ctx)
	case 3:
		s.handleHistory()
	case 4:
		s.handleSlotMap()
	case 5:
		s.handleSearch()
	case 6:
		fmt.Printf("\nTotal Revenue: Rs %d\n", s.service.TotalRevenue())
	case 7:
		s.handleParked()
	case 8:
		s.handleWaiting()
	case 9:
		s.handleMonthlyPass(ctx)
	case 10:
		s.handleEmergencyReset(ctx)
	case 11:
		s.handleFreeSlots()
	case 12:
		fmt.Println("Exiting...")
		return true
	default:
		fmt.Println("Invalid choice.")
	}
	return false
}

func (s *Shell) handleEntry(ctx context.Context) {
	id, ok := s.readInt("Enter vehicle id: ")
	if !ok {
		fmt.Println("Invalid input.")
		return
	}

	res, err := s.service.Entry(ctx, VehicleID(id), time.Now())
	if err != nil {
		fmt.Println(renderError(VehicleID(id), err))
		return
	}

	if res.Outcome == EntryParked {
		fmt.Printf("Vehicle %d parked at Slot %d (Entry: %s)\n",
			id, res.Slot, res.EntryTime.Format(timeLayout))
	} else {
		fmt.Printf("Parking full: Vehicle %d added to waiting at position %d.\n",
			id, res.Position)
	}
}

func (s *Shell) handleExit(ctx context.Context) {
	id, ok := s.readInt("Enter vehicle id to exit: ")
	if !ok {
		fmt.Println("Invalid input.")
		return
	}

	res, err := s.service.Exit(ctx, VehicleID(id), time.Now())
	if err != nil {
		fmt.Println(renderError(VehicleID(id), err))
		return
	}

	if res.Outcome == ExitLeftQueue {
		fmt.Printf("Vehicle %d removed from waiting queue.\n", id)
		return
	}

	secs := int64(res.Duration / time.Second)
	fmt.Printf("Vehicle %d exited from Slot %d\n", id, res.Slot)
	fmt.Printf("Entry : %s\n", res.EntryTime.Format(timeLayout))
	fmt.Printf("Exit  : %s\n", res.ExitTime.Format(timeLayout))
	fmt.Printf("Duration: %d hr %d min %d sec\n", secs/3600, (secs%3600)/60, secs%60)
	fmt.Printf("Fee: Rs %d\n", res.Fee)

	if res.Promoted != nil {
		fmt.Printf("Allocated Slot %d to waiting Vehicle %d (Entry: %s)\n",
			res.Promoted.Slot, res.Promoted.Vehicle,
			res.Promoted.EntryTime.Format(timeLayout))
	}
}

func (s *Shell) handleHistory() {
	records := s.service.History()
	fmt.Println("\nParking History (most recent first)")
	if len(records) == 0 {
		fmt.Println("None")
		return
	}
	for _, r := range records {
		if r.ExitTime == nil {
			fmt.Printf("Vehicle %d -> Slot %d | %s -> STILL PARKED\n",
				r.Vehicle, r.Slot, r.EntryTime.Format(timeLayout))
		} else {
			fmt.Printf("Vehicle %d -> Slot %d | %s -> %s\n",
				r.Vehicle, r.Slot, r.EntryTime.Format(timeLayout),
				r.ExitTime.Format(timeLayout))
		}
	}
}

func (s *Shell) handleSlotMap() {
	fmt.Println("\n Slot Map ")
	for _, st := range s.service.SlotMap() {
		if st.Occupied {
			fmt.Printf("Slot %d: [Vehicle %d]\n", st.Slot, st.Vehicle)
		} else {
			fmt.Printf("Slot %d: [Empty]\n", st.Slot)
		}
	}
}

func (s *Shell) handleSearch() {
	id, ok := s.readInt("Vehicle id: ")
	if !ok {
		fmt.Println("Invalid input.")
		return
	}

	st, err := s.service.Search(VehicleID(id))
	if err != nil {
		fmt.Println(renderError(VehicleID(id), err))
		return
	}

	switch st.Kind {
	case StatusParked:
		fmt.Printf("Vehicle %d parked at Slot %d (entry %s)\n",
			id, st.Slot, st.EntryTime.Format(timeLayout))
	case StatusWaiting:
		fmt.Printf("Vehicle %d is in the waiting queue at position %d.\n", id, st.Position)
	default:
		fmt.Printf("Vehicle %d not found.\n", id)
	}
}

func (s *Shell) handleParked() {
	fmt.Println("\nParked Vehicles ")
	parked := s.service.Parked()
	if len(parked) == 0 {
		fmt.Println("None")
		return
	}
	for _, p := range parked {
		fmt.Printf("Slot %d: Vehicle %d (entry %s)\n",
			p.Slot, p.Vehicle, p.EntryTime.Format(timeLayout))
	}
}

func (s *Shell) handleWaiting() {
	waiting := s.service.Waiting()
	fmt.Printf("\nWaiting Queue (%d/%d) \n", len(waiting), s.service.WaitCapacity())
	if len(waiting) == 0 {
		fmt.Println("Empty")
		return
	}
	for i, v := range waiting {
		fmt.Printf("%d. Vehicle %d\n", i+1, v)
	}
}

func (s *Shell) handleMonthlyPass(ctx context.Context) {
	id, ok := s.readInt("Vehicle id: ")
	if !ok {
		fmt.Println("Invalid input.")
		return
	}
	if err := s.service.RegisterMonthlyPass(ctx, VehicleID(id)); err != nil {
		fmt.Println(renderError(VehicleID(id), err))
		return
	}
	fmt.Printf("Vehicle %d registered as Monthly Pass.\n", id)
}

func (s *Shell) handleEmergencyReset(ctx context.Context) {
	answer, ok := s.readLine("Activate emergency? (y/n): ")
	if !ok || (answer != "y" && answer != "Y") {
		return
	}
	s.service.EmergencyReset(ctx)
	fmt.Println("\n!!! EMERGENCY MODE ACTIVE !!!")
	fmt.Println("System cleared. History retained.")
}

func (s *Shell) handleFreeSlots() {
	free := s.service.FreeSlots()
	fmt.Print("Free Slots: ")
	if len(free) == 0 {
		fmt.Print("None")
	}
	for _, slot := range free {
		fmt.Printf("%d ", slot)
	}
	fmt.Println()
}

func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	if !s.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.scanner.Text()), true
}

func (s *Shell) readInt(prompt string) (int, bool) {
	line, ok := s.readLine(prompt)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}
	return n, true
}

func renderError(v VehicleID, err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidVehicleID):
		return "Invalid vehicle id."
	case errors.Is(err, ErrDuplicateEntry):
		return fmt.Sprintf("Duplicate: Vehicle %d already parked or waiting.", v)
	case errors.Is(err, ErrFacilityFull):
		return "Parking & Waiting FULL!"
	case errors.Is(err, ErrNotParked):
		return fmt.Sprintf("Vehicle %d not parked.", v)
	case errors.Is(err, ErrNotInQueue):
		return fmt.Sprintf("Vehicle %d not found in waiting queue.", v)
	default:
		return "Error: " + err.Error()
	}
}
