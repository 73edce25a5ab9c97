package ingest

import (
	"os"

	"subreel/internal/services"
)

// ScanSource lists the entries of dir in lexical order. Entries are not
// filtered; anything that is not a video fails later during probing.
func ScanSource(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(ErrScan, "scan", "read source directory", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}
