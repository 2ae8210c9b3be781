// Package knowledge loads the per-subject topic lists and curated question
// banks used as few-shot examples, and answers retrieval queries over them.
//
// A Store is immutable once Load returns and may be shared freely between
// goroutines.
package knowledge

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/rubrix/internal/question"
)

// Options configures Load.
type Options struct {
	// Dir is an on-disk knowledge base. Files found here shadow the
	// bundled ones, and SaveBank writes here.
	Dir string

	// FS replaces the bundled knowledge base. Used by tests.
	FS fs.FS

	Logger *zap.Logger
}

// Store is a loaded knowledge base.
type Store struct {
	dir      string
	subjects []*subject
	byName   map[string]*subject
}

// subject holds one subject's assets with precomputed indices.
type subject struct {
	name     string
	dir      string
	topics   []question.TopicInfo
	entries  []question.BankEntry
	template string

	// lookup maps a topic code, name or lower-cased display name to the
	// topic codes it stands for.
	lookup map[string][]string
	labels map[string]string
}

// Load reads every subject in the manifest. A subject whose assets are
// missing or malformed is logged and kept with whatever did load; only
// context cancellation fails the load.
func Load(ctx context.Context, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	src := newSources(opts.Dir, opts.FS)

	m, err := readManifest(src)
	if err != nil {
		log.Warn("subject manifest unreadable, using defaults",
			zap.String("file", manifestFile), zap.Error(err))
	}

	subjects := make([]*subject, len(m.Subjects))
	g, ctx := errgroup.WithContext(ctx)
	for i, entry := range m.Subjects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, errs := loadSubject(src, entry)
			for _, e := range errs {
				log.Warn("knowledge asset skipped",
					zap.String("subject", e.Subject),
					zap.String("path", e.Path),
					zap.Error(e.Err))
			}
			subjects[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := &Store{
		dir:      opts.Dir,
		subjects: subjects,
		byName:   make(map[string]*subject, len(subjects)),
	}
	for _, s := range subjects {
		st.byName[s.name] = s
		log.Debug("subject loaded",
			zap.String("subject", s.name),
			zap.Int("topics", len(s.topics)),
			zap.Int("bank_entries", len(s.entries)))
	}
	return st, nil
}

// loadSubject reads one subject. The schema and bank fail independently,
// and each falls back to the next source when a copy does not decode.
func loadSubject(src sources, e subjectEntry) (*subject, []*AssetLoadError) {
	var errs []*AssetLoadError
	fail := func(file string, err error) {
		errs = append(errs, &AssetLoadError{Subject: e.Name, Path: subjectPath(e.Dir, file), Err: err})
	}

	items, _ := decodeFirst(src, subjectPath(e.Dir, schemaFile), decodeTopics,
		func(err error) { fail(schemaFile, err) })
	entries, _ := decodeFirst(src, subjectPath(e.Dir, bankFile), decodeBank,
		func(err error) { fail(bankFile, err) })

	var template string
	if data, err := src.read(subjectPath(e.Dir, templateFile)); err == nil {
		template = string(data)
	} else if !errors.Is(err, fs.ErrNotExist) {
		fail(templateFile, err)
	}

	return buildSubject(e, items, entries, template), errs
}

func buildSubject(e subjectEntry, items []topicItem, entries []question.BankEntry, template string) *subject {
	s := &subject{
		name:     e.Name,
		dir:      e.Dir,
		entries:  entries,
		template: template,
		lookup:   make(map[string][]string),
		labels:   make(map[string]string),
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		for _, code := range entry.Topics {
			counts[code]++
		}
	}

	for _, it := range items {
		s.topics = append(s.topics, question.TopicInfo{
			ID:           it.Name,
			Code:         it.ID,
			Name:         it.Display,
			Description:  it.Description,
			ExampleCount: counts[it.ID],
		})
		for _, key := range []string{it.ID, it.Name, strings.ToLower(it.Display)} {
			s.addLookup(key, it.ID)
		}
		s.labels[it.ID] = it.Display
		if it.Name != "" {
			s.labels[it.Name] = it.Display
		}
	}
	return s
}

func (s *subject) addLookup(key, code string) {
	if key == "" {
		return
	}
	for _, c := range s.lookup[key] {
		if c == code {
			return
		}
	}
	s.lookup[key] = append(s.lookup[key], code)
}

// Subjects returns the loaded subjects in manifest order.
func (st *Store) Subjects() []question.SubjectInfo {
	out := make([]question.SubjectInfo, len(st.subjects))
	for i, s := range st.subjects {
		out[i] = question.SubjectInfo{ID: s.name, Name: s.name, TopicCount: len(s.topics)}
	}
	return out
}

// Topics returns the topics of subject in schema order, or nil for an
// unknown subject.
func (st *Store) Topics(subjectName string) []question.TopicInfo {
	s, ok := st.byName[subjectName]
	if !ok {
		return nil
	}
	return append([]question.TopicInfo(nil), s.topics...)
}

// BankEntries returns a copy of subject's question bank.
func (st *Store) BankEntries(subjectName string) []question.BankEntry {
	s, ok := st.byName[subjectName]
	if !ok {
		return nil
	}
	return append([]question.BankEntry(nil), s.entries...)
}

// PromptTemplate returns the subject's prompt template, or "" when the
// subject has none.
func (st *Store) PromptTemplate(subjectName string) string {
	if s, ok := st.byName[subjectName]; ok {
		return s.template
	}
	return ""
}

// HasSubject reports whether subject is in the manifest.
func (st *Store) HasSubject(subjectName string) bool {
	_, ok := st.byName[subjectName]
	return ok
}

// TopicLabels renders topic ids as a comma-separated list of display names
// for prompts. Unknown ids are shown as given; duplicates are dropped. When
// nothing remains the raw ids are joined instead.
func (st *Store) TopicLabels(subjectName string, ids []string) string {
	s := st.byName[subjectName]

	var labels []string
	seen := make(map[string]bool)
	for _, id := range ids {
		label := id
		if s != nil {
			if l, ok := s.labels[id]; ok {
				label = l
			}
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return strings.Join(ids, ", ")
	}
	return strings.Join(labels, ", ")
}
