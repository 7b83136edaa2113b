package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DocumentSink receives seeded documents. Both the index and persistent
// entry stores satisfy it.
type DocumentSink interface {
	Add(ctx context.Context, id, content string) error
}

// SinkFunc adapts a function to a DocumentSink.
type SinkFunc func(ctx context.Context, id, content string) error

func (f SinkFunc) Add(ctx context.Context, id, content string) error {
	return f(ctx, id, content)
}

// MultiSink fans each document out to every sink in order.
func MultiSink(sinks ...DocumentSink) DocumentSink {
	return SinkFunc(func(ctx context.Context, id, content string) error {
		for _, sink := range sinks {
			if err := sink.Add(ctx, id, content); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedFromDir feeds every markdown and text file under dir to the sink,
// using the path relative to dir as the document id. It returns the number
// of documents seeded.
func SeedFromDir(ctx context.Context, sink DocumentSink, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		if err := sink.Add(ctx, rel, content); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
