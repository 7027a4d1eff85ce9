package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quizboard-service/internal/board"
	"quizboard-service/internal/domain"
)

type transportRow struct {
	bun.BaseModel `bun:"table:board_transports"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Source      int    `bun:"source"`
	Destination int    `bun:"destination"`
	Kind        string `bun:"kind"`
	IsActive    bool   `bun:"is_active"`
}

// BoardLoader reads the snake and ladder catalog.
type BoardLoader struct {
	db *bun.DB
}

func NewBoardLoader(db *bun.DB) *BoardLoader {
	return &BoardLoader{db: db}
}

// LoadBoard builds a validated board from the active catalog rows.
func (l *BoardLoader) LoadBoard(ctx context.Context) (*board.Board, error) {
	var rows []transportRow
	err := l.db.NewSelect().
		Model(&rows).
		Where("is_active").
		Order("source ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load board transports: %w", err)
	}

	transports := make([]domain.BoardTransport, 0, len(rows))
	for _, r := range rows {
		transports = append(transports, domain.BoardTransport{
			Source:      r.Source,
			Destination: r.Destination,
			Kind:        domain.TransportKind(r.Kind),
			Active:      r.IsActive,
		})
	}
	return board.New(transports)
}
