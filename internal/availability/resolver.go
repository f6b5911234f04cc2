// Package availability intersects a practitioner's slot grid with existing
// bookings to produce the advisory availability view. The view is read-only;
// the booking transaction re-validates authoritatively at commit time.
package availability

import (
	"context"
	"time"

	"github.com/brightpaw/vetclinic-platform/internal/appointments"
	"github.com/brightpaw/vetclinic-platform/internal/practitioners"
	"github.com/brightpaw/vetclinic-platform/internal/schedule"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// Slot is one entry of the availability view.
type Slot struct {
	Label    string `json:"time"`
	IsBooked bool   `json:"is_booked"`
}

// DefaultSlotLabels is the fixed fallback grid used when a practitioner has
// no working-hours configuration.
var DefaultSlotLabels = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"02:00 PM", "02:30 PM", "03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM",
}

// BookingSource supplies the day's non-cancelled bookings.
type BookingSource interface {
	ListForPractitionerDay(ctx context.Context, practitionerID string, day time.Time) ([]*appointments.Appointment, error)
}

// Directory resolves practitioner records.
type Directory interface {
	GetByID(ctx context.Context, id string) (*practitioners.Practitioner, error)
}

// Resolver computes availability views.
type Resolver struct {
	directory Directory
	bookings  BookingSource
	cache     *Cache
	logger    *logging.Logger
}

// NewResolver constructs a resolver. cache may be nil.
func NewResolver(directory Directory, bookings BookingSource, cache *Cache, logger *logging.Logger) *Resolver {
	if directory == nil {
		panic("availability: practitioner directory required")
	}
	if bookings == nil {
		panic("availability: booking source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{directory: directory, bookings: bookings, cache: cache, logger: logger}
}

// Resolve returns the ordered slot view for a practitioner. With a nil day
// every slot reports free (display only). With a day, slots whose normalized
// minute matches a non-cancelled booking on that calendar day are marked
// booked. Reads may be served from a short-lived cache; staleness is
// acceptable because the booking transaction re-checks at commit.
func (r *Resolver) Resolve(ctx context.Context, practitionerID string, day *time.Time) ([]Slot, error) {
	practitioner, err := r.directory.GetByID(ctx, practitionerID)
	if err != nil {
		return nil, err
	}

	minutes, labels, err := slotGrid(practitioner.WorkingHours)
	if err != nil {
		return nil, err
	}

	if day == nil {
		slots := make([]Slot, len(labels))
		for i, label := range labels {
			slots[i] = Slot{Label: label}
		}
		return slots, nil
	}

	if cached, ok := r.cache.Get(ctx, practitionerID, *day); ok {
		return cached, nil
	}

	booked, err := r.bookings.ListForPractitionerDay(ctx, practitionerID, *day)
	if err != nil {
		return nil, err
	}
	taken := make(map[int]bool, len(booked))
	for _, appt := range booked {
		taken[appt.SlotMinute] = true
	}

	slots := make([]Slot, len(labels))
	for i, label := range labels {
		slots[i] = Slot{Label: label, IsBooked: taken[minutes[i]]}
	}

	r.cache.Set(ctx, practitionerID, *day, slots)
	return slots, nil
}

// slotGrid generates the practitioner's slot minutes and labels, or the fixed
// fallback grid when no working hours are configured.
func slotGrid(wh *schedule.WorkingHours) ([]int, []string, error) {
	if wh == nil {
		minutes := make([]int, len(DefaultSlotLabels))
		for i, label := range DefaultSlotLabels {
			m, err := schedule.ParseLabel(label)
			if err != nil {
				return nil, nil, err
			}
			minutes[i] = m
		}
		return minutes, DefaultSlotLabels, nil
	}

	minutes, err := schedule.Slots(*wh)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]string, len(minutes))
	for i, m := range minutes {
		labels[i] = schedule.FormatLabel(m)
	}
	return minutes, labels, nil
}
