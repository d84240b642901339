package utils

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ArchiveFile is one named entry in a generated archive.
type ArchiveFile struct {
	Name    string
	Content string
}

// CreateZip bundles the given files into an in-memory zip archive,
// preserving order.
func CreateZip(files []ArchiveFile) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf, nil
}
