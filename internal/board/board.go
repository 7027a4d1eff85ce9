// Package board holds the snake/ladder catalog and the pure movement rules.
package board

import (
	"fmt"
	"sort"

	"quizboard-service/internal/domain"
)

// Board is a read-only lookup of active transports keyed by source square.
type Board struct {
	transports map[int]domain.BoardTransport
}

// New validates the catalog and builds a Board. Inactive transports are ignored.
func New(transports []domain.BoardTransport) (*Board, error) {
	b := &Board{transports: make(map[int]domain.BoardTransport, len(transports))}
	for _, t := range transports {
		if !t.Active {
			continue
		}
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := b.transports[t.Source]; dup {
			return nil, fmt.Errorf("board: duplicate active transport at square %d", t.Source)
		}
		b.transports[t.Source] = t
	}
	return b, nil
}

// MustNew is New for static catalogs known to be valid.
func MustNew(transports []domain.BoardTransport) *Board {
	b, err := New(transports)
	if err != nil {
		panic(err)
	}
	return b
}

func validate(t domain.BoardTransport) error {
	if t.Source <= 0 || t.Source >= domain.BoardSize {
		return fmt.Errorf("board: transport source %d outside (0,%d)", t.Source, domain.BoardSize)
	}
	if t.Destination <= 0 || t.Destination > domain.BoardSize {
		return fmt.Errorf("board: transport destination %d outside (0,%d]", t.Destination, domain.BoardSize)
	}
	switch t.Kind {
	case domain.KindSnake:
		if t.Destination >= t.Source {
			return fmt.Errorf("board: snake at %d must lead down, got %d", t.Source, t.Destination)
		}
	case domain.KindLadder:
		if t.Destination <= t.Source {
			return fmt.Errorf("board: ladder at %d must lead up, got %d", t.Source, t.Destination)
		}
	default:
		return fmt.Errorf("board: unknown transport kind %q", t.Kind)
	}
	return nil
}

// Lookup returns the active transport at square, if any.
func (b *Board) Lookup(square int) (domain.BoardTransport, bool) {
	if b == nil {
		return domain.BoardTransport{}, false
	}
	t, ok := b.transports[square]
	return t, ok
}

// Transports lists the catalog ordered by source square.
func (b *Board) Transports() []domain.BoardTransport {
	out := make([]domain.BoardTransport, 0, len(b.transports))
	for _, t := range b.transports {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Classic is the default catalog used when no database board is configured.
func Classic() []domain.BoardTransport {
	ladders := [][2]int{{4, 14}, {9, 31}, {20, 38}, {28, 84}, {40, 59}, {51, 67}, {63, 81}, {71, 91}}
	snakes := [][2]int{{17, 7}, {54, 34}, {62, 19}, {64, 60}, {87, 24}, {93, 73}, {95, 75}, {99, 78}}

	out := make([]domain.BoardTransport, 0, len(ladders)+len(snakes))
	for _, l := range ladders {
		out = append(out, domain.BoardTransport{Source: l[0], Destination: l[1], Kind: domain.KindLadder, Active: true})
	}
	for _, s := range snakes {
		out = append(out, domain.BoardTransport{Source: s[0], Destination: s[1], Kind: domain.KindSnake, Active: true})
	}
	return out
}
