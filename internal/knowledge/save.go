package knowledge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/rubrix/internal/question"
)

// SaveBank writes entries as subject's question-bank.json under the
// store's directory. The file is replaced atomically. The loaded store is
// not modified; Load again to see the new bank.
func (st *Store) SaveBank(subjectName string, entries []question.BankEntry) (string, error) {
	if st.dir == "" {
		return "", ErrReadOnly
	}
	s, ok := st.byName[subjectName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubject, subjectName)
	}

	data, err := encodeBank(entries)
	if err != nil {
		return "", fmt.Errorf("encode bank: %w", err)
	}

	path := filepath.Join(st.dir, filepath.FromSlash(s.dir), bankFile)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return "", err
	}
	return path, nil
}

// writeFileAtomic writes data to a temporary sibling of path, syncs it and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// ParseBank decodes a question-bank.json document for import. Unlike Load
// it is strict: every entry needs an id, at least two options and exactly
// one correct option.
func ParseBank(data []byte) ([]question.BankEntry, error) {
	entries, err := decodeBank(data)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		switch {
		case e.ID == "":
			return nil, fmt.Errorf("question %d: missing id", i)
		case seen[e.ID]:
			return nil, fmt.Errorf("question %d: duplicate id %q", i, e.ID)
		case len(e.Options) < 2:
			return nil, fmt.Errorf("question %s: needs at least 2 options, has %d", e.ID, len(e.Options))
		}
		seen[e.ID] = true

		correct := 0
		for _, o := range e.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("question %s: needs exactly one correct option, has %d", e.ID, correct)
		}
	}
	return entries, nil
}

// EncodeBank renders entries in the on-disk question-bank.json format.
func EncodeBank(entries []question.BankEntry) ([]byte, error) {
	return encodeBank(entries)
}
