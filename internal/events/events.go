// Package events publishes flight and ULD lifecycle notifications over NATS.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"uld_ingest/internal/cargo"
)

// Subjects used on the wire. Downstream consumers subscribe to "uld.>".
const (
	SubjectFlightDiscovered = "uld.flight.discovered"
	SubjectStatusChanged    = "uld.status.changed"
)

// FlightDiscovered is the payload published when an import finds a new flight.
type FlightDiscovered struct {
	FlightKey     string    `json:"flightKey"`
	FlightNumber  string    `json:"flightNumber"`
	ETA           string    `json:"eta"`
	BoardingPoint string    `json:"boardingPoint"`
	ULDCount      int       `json:"uldCount"`
	DiscoveredAt  time.Time `json:"discoveredAt"`
}

// StatusChanged is the payload published when a ULD status advances.
type StatusChanged struct {
	FlightKey string    `json:"flightKey"`
	ULDNumber string    `json:"uldNumber"`
	Status    int       `json:"status"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// Publisher sends lifecycle events to a NATS server.
type Publisher struct {
	nc *nats.Conn
}

// Connect dials the NATS server at the given URL. An empty URL uses the
// library default (localhost).
func Connect(url string) (*Publisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url,
		nats.Name("uld_ingest"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{nc: nc}, nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// PublishFlightDiscovered announces a newly tracked flight.
func (p *Publisher) PublishFlightDiscovered(f *cargo.Flight) error {
	payload := NewFlightDiscovered(f, time.Now().UTC())
	return p.publish(SubjectFlightDiscovered, payload)
}

// PublishStatusChanged announces a ULD status advance.
func (p *Publisher) PublishStatusChanged(flightKey string, u *cargo.ULD) error {
	payload := NewStatusChanged(flightKey, u)
	return p.publish(SubjectStatusChanged, payload)
}

func (p *Publisher) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// NewFlightDiscovered builds the discovery payload for a flight.
func NewFlightDiscovered(f *cargo.Flight, now time.Time) FlightDiscovered {
	return FlightDiscovered{
		FlightKey:     f.Key(),
		FlightNumber:  f.FlightNumber,
		ETA:           f.ETA,
		BoardingPoint: f.BoardingPoint,
		ULDCount:      f.ULDCount,
		DiscoveredAt:  now,
	}
}

// NewStatusChanged builds the status payload from the latest history entry.
// ULD history is append-only, so the tail entry is the change being announced.
func NewStatusChanged(flightKey string, u *cargo.ULD) StatusChanged {
	ev := StatusChanged{
		FlightKey: flightKey,
		ULDNumber: u.ULDNumber,
		Status:    u.Status,
	}
	if n := len(u.StatusHistory); n > 0 {
		last := u.StatusHistory[n-1]
		ev.ChangedBy = last.ChangedBy
		ev.ChangedAt = last.Timestamp
	}
	return ev
}
