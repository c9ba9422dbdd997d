package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Run reads document ids from r, one per line, and prints a preview of each
// until r is exhausted or ctx is cancelled.
func (a *App) Run(ctx context.Context, r io.Reader) error {
	a.log.Info().Msg("Enter document paths to preview (one per line). Ctrl+C to exit.")

	scanner := bufio.NewScanner(r)

	// long lines are allowed
	const maxLineSize = 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("Shutting down")
			return nil
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("stdin error: %w", err)
				}
				a.log.Info().Msg("stdin closed")
				return nil
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			if err := a.handleDocument(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (a *App) handleDocument(ctx context.Context, documentID string) error {
	a.log.Info().Str("document", documentID).Msg("Received input")

	report, err := a.Preview(ctx, []string{documentID})
	if err != nil {
		return err
	}
	return RenderPreview(a.out, report)
}
