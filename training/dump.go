package training

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/exactlab/diapasom/lattice"
)

// DumpWriter persists a lattice's weights to disk, one file per dumped
// epoch, in the row col value... text format the original printed.
// Only rank 0 ever writes: every rank holds an identical, fully reduced
// copy of the weights by the time a dump happens, so writing from every
// rank would just race on the same bytes.
type DumpWriter struct {
	Rank int
	Dir  string

	// Every is the dump period in epochs; 0 means "every epoch".
	Every int

	// Compress enables zstd compression of every dump file.
	Compress bool
}

// Write persists weights for the given epoch, unless Rank != 0 or Every
// says to skip this epoch.
func (w *DumpWriter) Write(epoch int, weights *lattice.Weights) error {
	if w.Rank != 0 {
		return nil
	}
	if w.Every > 0 && epoch%w.Every != 0 {
		return nil
	}

	name := "lattice" + strconv.Itoa(epoch) + ".out"
	if w.Compress {
		name += ".zst"
	}

	f, err := os.Create(filepath.Join(w.Dir, name))
	if err != nil {
		return fmt.Errorf("training: dump epoch %d: %w", epoch, err)
	}
	defer f.Close()

	var out io.Writer = f
	var enc *zstd.Encoder
	if w.Compress {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("training: dump epoch %d: %w", epoch, err)
		}
		out = enc
	}

	if err := writeLattice(out, weights); err != nil {
		return fmt.Errorf("training: dump epoch %d: %w", epoch, err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("training: dump epoch %d: %w", epoch, err)
		}
	}
	return nil
}

func writeLattice(w io.Writer, weights *lattice.Weights) error {
	buf := make([]byte, 0, 64)
	for row := 0; row < weights.Rows; row++ {
		for col := 0; col < weights.Cols; col++ {
			buf = buf[:0]
			buf = strconv.AppendInt(buf, int64(row), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(col), 10)
			buf = append(buf, ' ')
			for _, v := range weights.Entry(row, col) {
				buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
				buf = append(buf, ' ')
			}
			buf = append(buf, '\n')
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}
