package pricing

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrInvalidBooking = errors.New("invalid booking")
	ErrUnknownAddon   = errors.New("unknown addon")
)

type Mode string

const (
	ModeFlat         Mode = "flat"
	ModePerPassenger Mode = "per_passenger"
)

// AddonPrice is a server-configured price for one optional extra.
type AddonPrice struct {
	Price float64
	Mode  Mode
}

// Table holds the server-side prices in MXN pesos. Client-supplied
// prices are never consulted.
type Table struct {
	AdultPrice float64
	ChildPrice float64
	Addons     map[string]AddonPrice
}

type Counts struct {
	Adults   int
	Children int
}

// ComputeTotal returns the trusted total in centavos. Each line item is
// rounded half-up to whole pesos before conversion to minor units.
// An addon name missing from the table fails with ErrUnknownAddon
// instead of being silently dropped.
func ComputeTotal(counts Counts, addons []string, table Table) (int64, error) {
	if counts.Adults < 0 || counts.Children < 0 {
		return 0, ErrInvalidBooking
	}
	passengers := counts.Adults + counts.Children
	if passengers < 1 {
		return 0, ErrInvalidBooking
	}

	total := roundPesos(float64(counts.Adults) * table.AdultPrice)
	total += roundPesos(float64(counts.Children) * table.ChildPrice)

	for _, name := range addons {
		ap, ok := table.Addons[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, ErrUnknownAddon
		}
		switch ap.Mode {
		case ModePerPassenger:
			total += roundPesos(ap.Price * float64(passengers))
		default:
			total += roundPesos(ap.Price)
		}
	}

	if total <= 0 {
		return 0, ErrInvalidBooking
	}
	return total * 100, nil
}

func roundPesos(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
