package snapshotting

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/GNS-S/ripv2-simulation/routing"
)

const tableRule = "+-------------+----------+------------+" +
	"--------------+------------+\n"

// A FileWriter writes each snapshot to its own text file under a logs
// directory, as an ASCII routing table.
type FileWriter struct {
	dir string

	mkdirOnce sync.Once
}

// NewFileWriter creates a writer that stores snapshot files under dir. The
// directory is created on first use.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// LogSnapshot writes one snapshot file, named
// {routerID}_{sequence}_log.txt.
func (w *FileWriter) LogSnapshot(s routing.Snapshot) {
	w.mkdirOnce.Do(func() {
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			log.Printf("snapshot dir %s: %v", w.dir, err)
		}
	})

	filename := filepath.Join(w.dir,
		fmt.Sprintf("%d_%04d_log.txt", s.Router, s.Seq))

	if err := os.WriteFile(filename, []byte(Format(s)), 0o644); err != nil {
		log.Printf("snapshot file %s: %v", filename, err)
	}
}

// Format renders a snapshot as the ASCII routing table that the log files
// contain.
func Format(s routing.Snapshot) string {
	var b strings.Builder

	title := fmt.Sprintf("Router #%d  Routing Table  (t=%.0fs, update %d)",
		s.Router, float64(s.Time), s.Seq)

	b.WriteString(tableRule)
	b.WriteString("|" + center(title, 65) + "|\n")
	b.WriteString(tableRule)
	b.WriteString("| destination |  metric  |  next hop  |" +
		"  is changed  | is garbage |\n")
	b.WriteString(tableRule)

	for i, e := range s.Entries {
		b.WriteString(formatRow(e))
		if i == 0 {
			b.WriteString("|_____________|__________|____________|" +
				"______________|____________|\n")
		}
		b.WriteString(tableRule)
	}

	return b.String()
}

func formatRow(e routing.SnapshotEntry) string {
	return fmt.Sprintf("|%s|%s|%s|%s|%s|\n",
		center(fmt.Sprintf("%d", e.Dest), 13),
		center(fmt.Sprintf("%d", e.Metric), 10),
		center(fmt.Sprintf("%d", e.NextHop), 12),
		center(fmt.Sprintf("%t", e.Changed), 14),
		center(fmt.Sprintf("%t", e.Garbage), 12))
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}

	left := (width - len(s)) / 2
	right := width - len(s) - left

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
