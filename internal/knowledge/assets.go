package knowledge

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
)

//go:embed assets
var embedded embed.FS

const (
	manifestFile = "subjects.yaml"
	schemaFile   = "question-schema.json"
	bankFile     = "question-bank.json"
	templateFile = "prompt.md"
)

// bundled returns the knowledge base shipped with the binary.
func bundled() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// sources is an ordered list of asset file systems. Earlier entries shadow
// later ones file by file.
type sources []fs.FS

func newSources(dir string, base fs.FS) sources {
	var s sources
	if dir != "" {
		s = append(s, os.DirFS(dir))
	}
	if base == nil {
		base = bundled()
	}
	return append(s, base)
}

// read returns the first copy of name found. fs.ErrNotExist is returned
// only when no source has it.
func (s sources) read(name string) ([]byte, error) {
	for _, fsys := range s {
		data, err := fs.ReadFile(fsys, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// decodeFirst returns the first copy of name that both reads and decodes.
// Every copy that fails is passed to fail and the next source is tried, so
// a broken file in the on-disk directory falls back to the bundled one.
func decodeFirst[T any](s sources, name string, decode func([]byte) (T, error), fail func(error)) (T, bool) {
	var zero T
	found := false
	for _, fsys := range s {
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		found = true
		if err != nil {
			fail(err)
			continue
		}
		v, err := decode(data)
		if err != nil {
			fail(err)
			continue
		}
		return v, true
	}
	if !found {
		fail(&fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist})
	}
	return zero, false
}

func subjectPath(dir, file string) string {
	return path.Join(dir, file)
}
