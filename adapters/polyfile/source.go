package polyfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"phaseshift/domain/lfsr"
	"phaseshift/internal/errors"
)

// Source serves polynomials from <Dir>/<degree>.txt
type Source struct {
	Dir string
}

// NewSource creates a source rooted at dir
func NewSource(dir string) *Source {
	return &Source{Dir: dir}
}

// Path returns the file holding polynomials of the given degree
func (s *Source) Path(degree int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%d.txt", degree))
}

// Polynomial returns the entry-th line (1-indexed) of the degree file
func (s *Source) Polynomial(ctx context.Context, degree, entry int) (lfsr.Polynomial, error) {
	if entry < 1 {
		return nil, errors.IndexOutOfRange(fmt.Sprintf("entry is 1-indexed, got %d", entry))
	}
	path := s.Path(degree)
	line, err := ReadLine(ctx, path, entry)
	if err != nil {
		return nil, err
	}

	p, err := Parse(line)
	if err != nil {
		return nil, errors.Wrapf(err, "%s line %d", path, entry)
	}
	if p.Degree() != degree {
		return nil, errors.ParseError(fmt.Sprintf("%s line %d has degree %d, expected %d", path, entry, p.Degree(), degree))
	}
	return p, nil
}

// ReadLine returns line number entry (1-indexed) of path
func ReadLine(ctx context.Context, path string, entry int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.WithCode(errors.CodeNotFound,
				errors.Wrapf(err, "polynomial file does not exist: %s", path))
		}
		return "", errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for i := 1; scanner.Scan(); i++ {
		if i == entry {
			return scanner.Text(), nil
		}
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return "", errors.IndexOutOfRange(fmt.Sprintf("entry %d exceeds the number of lines in %s", entry, path))
}
