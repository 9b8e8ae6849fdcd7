package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"nutrition/internal/batch"
	"nutrition/internal/datasource/file"
	"nutrition/internal/ingredient"
)

// BenchmarkFormatBatch measures the in-memory hot path: rendering one row of
// literals and handing it to the batch writer, without any file I/O.
//
//	go test -run=^$ -bench ^BenchmarkFormatBatch$ -benchmem ./internal/convert
func BenchmarkFormatBatch(b *testing.B) {
	rec := ingredient.Record{
		"name":          "O'Brien's Rolled Oats",
		"category":      "Cereal Grains and Pasta",
		"calories":      "379",
		"protein_g":     "13.15",
		"carbs_g":       "67.7",
		"fat_g":         "6.52",
		"fiber_g":       "10.1",
		"sodium_mg":     "6",
		"health_labels": "vegan, vegetarian, dairy-free",
		"allergens":     "gluten",
		"is_active":     "true",
	}
	w, err := batch.NewWriter(io.Discard, batch.Options{
		Table:          ingredient.Table,
		Columns:        ingredient.ColumnNames(),
		ConflictColumn: ingredient.ConflictColumn,
		Groups:         ingredient.Groups,
		Logger:         zerolog.Nop(),
	})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v, err := ingredient.Format(rec)
		if err != nil {
			b.Fatal(err)
		}
		if err := w.Add(v.Literals); err != nil {
			b.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		b.Fatal(err)
	}
}

// BenchmarkRun converts a 10k-row CSV end to end.
func BenchmarkRun(b *testing.B) {
	var buf bytes.Buffer
	buf.WriteString("name,category,calories,protein_g,fat_g,health_labels\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&buf, "Food %d,Test,%d.5,1.25,0.3,\"vegan, kosher\"\n", i, i%900)
	}
	dir := b.TempDir()
	in := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(in, buf.Bytes(), 0o644); err != nil {
		b.Fatal(err)
	}
	out := filepath.Join(dir, "out.sql")

	b.SetBytes(int64(buf.Len()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(context.Background(), Options{
			Input:  file.NewLocal(in),
			Output: out,
			Logger: zerolog.Nop(),
		}); err != nil {
			b.Fatal(err)
		}
	}
}
