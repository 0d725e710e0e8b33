package docread

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/nkmathur/partsrecon/constants"
)

func (r *Reader) readText(ctx context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open text: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Document{}, fmt.Errorf("scan text: %w", err)
	}

	// A text source is treated as a single page.
	return Document{
		Format: constants.TXT,
		Pages:  []PageContent{{Lines: lines}},
	}, nil
}
