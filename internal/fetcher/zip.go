package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractZIPFile pulls one member out of a ZIP archive into destDir and
// returns the path to the extracted file. The CAL-ACCESS bulk export nests
// its TSVs under CalAccess/DATA/, so members are matched against the base
// name of each entry, case-insensitively, and written flat into destDir.
func ExtractZIPFile(zipPath, member, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: open archive %s", filepath.Base(zipPath))
	}
	defer r.Close() //nolint:errcheck

	want := strings.ToUpper(member)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.ToUpper(filepath.Base(f.Name)) != want {
			continue
		}
		dest := filepath.Join(destDir, filepath.Base(f.Name))
		if err := writeZIPEntry(f, dest); err != nil {
			return "", err
		}
		return dest, nil
	}

	return "", eris.Errorf("fetcher: member %q not found in archive (%d entries)", member, len(r.File))
}

func writeZIPEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "fetcher: open archive entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return eris.Wrap(err, "fetcher: create extract directory")
	}

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "fetcher: create extracted file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrapf(err, "fetcher: extract %s", f.Name)
	}
	return nil
}
