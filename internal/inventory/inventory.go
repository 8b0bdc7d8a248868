// Package inventory owns seat status for every showtime. All seat mutations go
// through SeatInventory; each call runs under the showtime's own lock so
// unrelated showtimes never contend, and readers get lock-free snapshots.
package inventory

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/pkg/apperror"

	"go.uber.org/zap"
)

// Guard inspects the seat statuses of a showtime inside the reserve critical
// section, before anything is committed. A non-nil error aborts the reservation.
type Guard func(layout entity.SeatLayout, current map[string]entity.SeatStatus) error

// Snapshot is an immutable point-in-time view of one showtime's seats.
type Snapshot struct {
	ShowtimeID string
	Version    uint64
	Seats      map[string]entity.SeatStatus
	Available  int
}

func (s *Snapshot) Status(seatID string) entity.SeatStatus {
	return s.Seats[seatID]
}

type seatState struct {
	status entity.SeatStatus
	holder string // booking id, empty when available
}

type showtimeSeats struct {
	mu       sync.Mutex
	id       string
	layout   entity.SeatLayout
	seats    map[string]*seatState
	version  uint64
	snapshot atomic.Pointer[Snapshot]
}

type SeatInventory struct {
	mu        sync.RWMutex
	showtimes map[string]*showtimeSeats
	log       *zap.Logger
}

func New(log *zap.Logger) *SeatInventory {
	return &SeatInventory{
		showtimes: make(map[string]*showtimeSeats),
		log:       log.With(zap.String("component", "inventory")),
	}
}

// Register adds a showtime with every seat AVAILABLE. Registering an existing showtime is a no-op.
func (inv *SeatInventory) Register(showtimeID string, layout entity.SeatLayout) error {
	if err := layout.Validate(); err != nil {
		return apperror.Wrap(apperror.CodeInvalidSelection, err, "invalid layout for showtime %s", showtimeID)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.showtimes[showtimeID]; ok {
		return nil
	}

	st := &showtimeSeats{
		id:     showtimeID,
		layout: layout.Clone(),
		seats:  make(map[string]*seatState),
	}
	for _, id := range layout.SeatIDs() {
		st.seats[id] = &seatState{status: entity.SeatStatusAvailable}
	}
	st.publish()

	inv.showtimes[showtimeID] = st
	inv.log.Debug("Showtime registered",
		zap.String("showtime_id", showtimeID),
		zap.Int("seat_count", len(st.seats)),
	)
	return nil
}

// Reserve moves every requested seat from AVAILABLE to RESERVED under bookingID, or none of them.
// Guards run once every requested seat is known to be available, before anything is committed.
func (inv *SeatInventory) Reserve(showtimeID, bookingID string, seatIDs []string, guards ...Guard) error {
	st, err := inv.showtime(showtimeID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.checkKnown(seatIDs); err != nil {
		return err
	}

	var taken []string
	for _, id := range seatIDs {
		if st.seats[id].status != entity.SeatStatusAvailable {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		sort.Strings(taken)
		return apperror.New(apperror.CodeSeatUnavailable, "seats not available: %s", strings.Join(taken, ", "))
	}

	if len(guards) > 0 {
		current := st.statuses()
		for _, guard := range guards {
			if err := guard(st.layout, current); err != nil {
				return err
			}
		}
	}

	for _, id := range seatIDs {
		st.seats[id].status = entity.SeatStatusReserved
		st.seats[id].holder = bookingID
	}
	st.publish()

	inv.log.Debug("Seats reserved",
		zap.String("showtime_id", showtimeID),
		zap.String("booking_id", bookingID),
		zap.Strings("seats", seatIDs),
	)
	return nil
}

// Finalize moves the booking's seats from RESERVED to BOOKED. Every seat must be
// RESERVED under bookingID, otherwise nothing changes.
func (inv *SeatInventory) Finalize(showtimeID, bookingID string, seatIDs []string) error {
	st, err := inv.showtime(showtimeID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, id := range seatIDs {
		seat, ok := st.seats[id]
		if !ok || seat.status != entity.SeatStatusReserved || seat.holder != bookingID {
			return apperror.New(apperror.CodeInvalidState,
				"seat %s is not reserved by booking %s", id, bookingID)
		}
	}

	for _, id := range seatIDs {
		st.seats[id].status = entity.SeatStatusBooked
	}
	st.publish()

	inv.log.Debug("Seats finalized",
		zap.String("showtime_id", showtimeID),
		zap.String("booking_id", bookingID),
		zap.Strings("seats", seatIDs),
	)
	return nil
}

// Release returns the seats held by bookingID to AVAILABLE and reports how many changed.
// Seats that are already available or held by another booking are left alone.
func (inv *SeatInventory) Release(showtimeID, bookingID string, seatIDs []string) (int, error) {
	st, err := inv.showtime(showtimeID)
	if err != nil {
		return 0, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	released := 0
	for _, id := range seatIDs {
		seat, ok := st.seats[id]
		if !ok || !seat.status.IsOccupied() || seat.holder != bookingID {
			continue
		}
		seat.status = entity.SeatStatusAvailable
		seat.holder = ""
		released++
	}

	if released > 0 {
		st.publish()
		inv.log.Debug("Seats released",
			zap.String("showtime_id", showtimeID),
			zap.String("booking_id", bookingID),
			zap.Int("released", released),
		)
	}
	return released, nil
}

// Restore re-applies a persisted booking's hold while rebuilding the inventory on startup.
func (inv *SeatInventory) Restore(showtimeID, bookingID string, seatIDs []string, status entity.SeatStatus) error {
	if !status.IsValid() {
		return apperror.New(apperror.CodeInvalidState, "cannot restore seats as %q", status)
	}
	if !status.IsOccupied() {
		return nil
	}

	if err := inv.Reserve(showtimeID, bookingID, seatIDs); err != nil {
		return err
	}
	if status == entity.SeatStatusBooked {
		return inv.Finalize(showtimeID, bookingID, seatIDs)
	}
	return nil
}

// Snapshot returns the latest published view without taking the showtime lock.
func (inv *SeatInventory) Snapshot(showtimeID string) (*Snapshot, error) {
	st, err := inv.showtime(showtimeID)
	if err != nil {
		return nil, err
	}
	return st.snapshot.Load(), nil
}

// Layout returns a copy of the showtime's registered layout.
func (inv *SeatInventory) Layout(showtimeID string) (entity.SeatLayout, error) {
	st, err := inv.showtime(showtimeID)
	if err != nil {
		return entity.SeatLayout{}, err
	}
	return st.layout.Clone(), nil
}

func (inv *SeatInventory) Has(showtimeID string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	_, ok := inv.showtimes[showtimeID]
	return ok
}

func (inv *SeatInventory) showtime(showtimeID string) (*showtimeSeats, error) {
	inv.mu.RLock()
	st, ok := inv.showtimes[showtimeID]
	inv.mu.RUnlock()

	if !ok {
		return nil, apperror.New(apperror.CodeShowtimeNotFound, "showtime %s not found", showtimeID)
	}
	return st, nil
}

// checkKnown requires a non-empty selection of distinct seats of this showtime. Caller holds st.mu.
func (st *showtimeSeats) checkKnown(seatIDs []string) error {
	if len(seatIDs) == 0 {
		return apperror.New(apperror.CodeInvalidSelection, "at least one seat must be selected")
	}

	seen := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		if _, ok := st.seats[id]; !ok {
			return apperror.New(apperror.CodeInvalidSelection, "seat %s does not belong to showtime %s", id, st.id)
		}
		if seen[id] {
			return apperror.New(apperror.CodeInvalidSelection, "seat %s selected more than once", id)
		}
		seen[id] = true
	}
	return nil
}

// statuses copies the current seat statuses. Caller holds st.mu.
func (st *showtimeSeats) statuses() map[string]entity.SeatStatus {
	out := make(map[string]entity.SeatStatus, len(st.seats))
	for id, seat := range st.seats {
		out[id] = seat.status
	}
	return out
}

// publish swaps in a fresh snapshot. Caller holds st.mu (or owns st exclusively).
func (st *showtimeSeats) publish() {
	st.version++
	seats := st.statuses()

	available := 0
	for _, status := range seats {
		if status == entity.SeatStatusAvailable {
			available++
		}
	}

	st.snapshot.Store(&Snapshot{
		ShowtimeID: st.id,
		Version:    st.version,
		Seats:      seats,
		Available:  available,
	})
}
