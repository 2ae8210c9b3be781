package knowledge

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSubject is used when no manifest is available.
const DefaultSubject = "Computer Science"

// manifest lists the subjects of a knowledge base.
//
//	subjects:
//	  - name: Computer Science
//	    dir: computer-science
type manifest struct {
	Subjects []subjectEntry `yaml:"subjects"`
}

// subjectEntry names a subject and the directory holding its assets. Dir
// defaults to Name.
type subjectEntry struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

func defaultManifest() manifest {
	return manifest{Subjects: []subjectEntry{{Name: DefaultSubject, Dir: DefaultSubject}}}
}

// readManifest returns the manifest from the first source that has one.
// A missing manifest yields the default subject list.
func readManifest(src sources) (manifest, error) {
	data, err := src.read(manifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultManifest(), nil
	}
	if err != nil {
		return defaultManifest(), err
	}
	return parseManifest(data)
}

func parseManifest(data []byte) (manifest, error) {
	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return defaultManifest(), fmt.Errorf("decode %s: %w", manifestFile, err)
	}

	seen := make(map[string]bool, len(m.Subjects))
	out := m.Subjects[:0]
	for _, s := range m.Subjects {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		if s.Dir == "" {
			s.Dir = s.Name
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return defaultManifest(), fmt.Errorf("%s lists no subjects", manifestFile)
	}
	m.Subjects = out
	return m, nil
}
