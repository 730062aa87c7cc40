package model

import "time"

// Event is a ticketed occasion hosted by a vendor.  Tickets are sold in
// tiers and each event has a fixed seat map.
//
// Fields:
//  ID        – primary key identifier.
//  VendorID  – vendor hosting the event.
//  Title     – display title.
//  StartsAt  – when the event begins.
//  SeatCount – number of seats on the map (ids 1..SeatCount).
type Event struct {
    ID        uint64    // events.id
    VendorID  uint64    // events.vendor_id
    Title     string    // events.title
    StartsAt  time.Time // events.starts_at
    SeatCount int       // events.seat_count
}

// TicketTier is a priced category of ticket for an event, e.g. a
// "Tasting Pass".  Prices are stored in cents.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event the tier belongs to.
//  Name       – display name.
//  PriceCents – unit price in cents.
type TicketTier struct {
    ID         uint64 `json:"id"`          // ticket_tiers.id
    EventID    uint64 `json:"event_id"`    // ticket_tiers.event_id
    Name       string `json:"name"`        // ticket_tiers.name
    PriceCents uint32 `json:"price_cents"` // ticket_tiers.price_cents
}
