package availability

import (
	"context"

	"github.com/brightpaw/vetclinic-platform/internal/appointments"
)

// BookingObserver invalidates the cached view for a practitioner-day whenever
// a booking lands or is cancelled there, then forwards to the wrapped
// notifier. It keeps the availability cache honest without coupling the
// booking service to Redis.
type BookingObserver struct {
	cache *Cache
	next  appointments.Notifier
}

// NewBookingObserver wraps next (which may be nil) with cache invalidation.
func NewBookingObserver(cache *Cache, next appointments.Notifier) *BookingObserver {
	return &BookingObserver{cache: cache, next: next}
}

func (o *BookingObserver) BookingConfirmed(ctx context.Context, appt *appointments.Appointment) {
	o.cache.Invalidate(ctx, appt.PractitionerID, appt.Date)
	if o.next != nil {
		o.next.BookingConfirmed(ctx, appt)
	}
}

func (o *BookingObserver) BookingCancelled(ctx context.Context, appt *appointments.Appointment) {
	o.cache.Invalidate(ctx, appt.PractitionerID, appt.Date)
	if o.next != nil {
		o.next.BookingCancelled(ctx, appt)
	}
}
