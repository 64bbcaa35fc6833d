package snapshot

import (
	"time"
	_ "time/tzdata" // CET must resolve on hosts without a zoneinfo database
)

// Policy decides whether a snapshot must be refreshed before use.
type Policy interface {
	NextUpdate(fetchedAt time.Time) time.Time
	IsStale(s *Snapshot, now time.Time) bool
}

// DailyCutover models a provider that publishes once a day at a fixed wall
// clock time. The default cutover sits ten minutes after the ECB's 16:00 CET
// publication.
type DailyCutover struct {
	Hour     int
	Minute   int
	Location *time.Location
}

func cetLocation() *time.Location {
	loc, err := time.LoadLocation("CET")
	if err != nil {
		return time.FixedZone("CET", 60*60)
	}
	return loc
}

func NewDailyCutover() *DailyCutover {
	return &DailyCutover{
		Hour:     16,
		Minute:   10,
		Location: cetLocation(),
	}
}

// NextUpdate is the cutover on fetchedAt's calendar day, or the next day's
// cutover when fetchedAt is already past it.
func (p *DailyCutover) NextUpdate(fetchedAt time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := fetchedAt.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), p.Hour, p.Minute, 0, 0, loc)
	if local.After(next) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, p.Hour, p.Minute, 0, 0, loc)
	}
	return next
}

// IsStale reports whether now is past the snapshot's next update. A
// snapshot that was never fetched is always stale.
func (p *DailyCutover) IsStale(s *Snapshot, now time.Time) bool {
	if s == nil || s.FetchedAt == nil {
		return true
	}
	return now.After(p.NextUpdate(*s.FetchedAt))
}
