package app

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"quizboard-service/internal/domain"
)

// Dice produces dice values in 1..6. Implementations must be safe for concurrent use.
type Dice interface {
	Roll() (int, error)
}

// CryptoDice draws from crypto/rand so clients can neither predict nor replay rolls.
type CryptoDice struct{}

func (CryptoDice) Roll() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(domain.DiceFaces))
	if err != nil {
		return 0, fmt.Errorf("roll dice: %w", err)
	}
	return int(n.Int64()) + 1, nil
}

// SequenceDice replays a fixed sequence, cycling when exhausted. Intended for tests
// and demos only.
type SequenceDice struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewSequenceDice(values ...int) *SequenceDice {
	return &SequenceDice{values: values}
}

func (d *SequenceDice) Roll() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.values) == 0 {
		return 0, fmt.Errorf("sequence dice: no values")
	}
	v := d.values[d.next%len(d.values)]
	d.next++
	return v, nil
}
