package loader

import (
	"encoding/json"
	"io/fs"
	"iter"
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// rawGrammar is a decoded-but-not-yet-compiled grammar file, together with
// the path information CompileGrammar needs to validate its scopeName and
// resolve its own `source.*` includes.
type rawGrammar struct {
	json     GrammarJSON
	dir      string
	filename string
}

// Loader discovers grammar files under a set of paths and compiles them
// on demand, caching each compiled Grammar (and sharing a single
// ScopeRegistry across all of them) so that repeated lookups and
// cross-grammar `source.*` includes don't recompile or re-intern scopes.
type Loader struct {
	Registry *ScopeRegistry

	filetypes map[string][]*rawGrammar
	scopes    map[string]*rawGrammar
	compiled  map[string]*Grammar
}

func loadFile(pathname string) (GrammarJSON, error) {
	content, err := os.ReadFile(pathname)
	if err != nil {
		return GrammarJSON{}, err
	}
	var encoded GrammarJSON
	if strings.HasSuffix(pathname, ".json") {
		err = json.Unmarshal(content, &encoded)
	} else {
		_, err = plist.Unmarshal(content, &encoded)
	}
	return encoded, err
}

// NewLoader builds a Loader from every grammar file reachable through
// paths. A path that fails to load or parse is silently skipped, the same
// tolerance a directory of unrelated or malformed grammar files needs.
func NewLoader(paths iter.Seq[string]) (*Loader, bool) {
	l := &Loader{
		Registry:  NewScopeRegistry(),
		scopes:    make(map[string]*rawGrammar),
		filetypes: make(map[string][]*rawGrammar),
		compiled:  make(map[string]*Grammar),
	}

	for pathname := range paths {
		j, err := loadFile(pathname)
		if err != nil {
			continue
		}
		raw := &rawGrammar{json: j, dir: filepath.Dir(pathname), filename: filepath.Base(pathname)}
		l.scopes[j.ScopeName] = raw
		for _, ft := range j.FileTypes {
			ft = strings.TrimLeft(ft, ".")
			l.filetypes[ft] = append(l.filetypes[ft], raw)
		}
	}
	return l, len(l.scopes) > 0
}

// NewLoaderFromDir builds a Loader from every file in dir, optionally
// walking subdirectories.
func NewLoaderFromDir(dir string, walk bool) (*Loader, bool) {
	if walk {
		return NewLoader(func(yield func(string) bool) {
			filepath.WalkDir(dir, func(pathname string, d fs.DirEntry, err error) error {
				if err == nil && !d.IsDir() {
					if !yield(pathname) {
						return filepath.SkipAll
					}
				}
				return nil
			})
		})
	}
	return NewLoader(func(yield func(string) bool) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if !entry.IsDir() && !yield(path.Join(dir, entry.Name())) {
				return
			}
		}
	})
}

// FromScope compiles (or returns the cached compilation of) the grammar
// registered under scope.
func (l *Loader) FromScope(scope string) (*Grammar, error) {
	if g, ok := l.compiled[scope]; ok {
		return g, nil
	}
	raw, ok := l.scopes[scope]
	if !ok {
		return nil, os.ErrNotExist
	}
	g, err := CompileGrammar(l, l.Registry, raw.json, raw.dir, raw.filename)
	if err != nil {
		return nil, err
	}
	l.compiled[scope] = g
	return g, nil
}

// FromFileType compiles the index'th grammar registered for file type ft.
func (l *Loader) FromFileType(ft string, index int) (*Grammar, error) {
	raws, ok := l.filetypes[ft]
	if !ok || index >= len(raws) {
		return nil, os.ErrNotExist
	}
	return l.FromScope(raws[index].json.ScopeName)
}

// Scopes yields every scopeName this Loader knows about.
func (l *Loader) Scopes() iter.Seq[string] {
	return maps.Keys(l.scopes)
}

// FileTypes yields every file type extension this Loader knows about.
func (l *Loader) FileTypes() iter.Seq[string] {
	return maps.Keys(l.filetypes)
}

// FileTypeNames yields, for each known file type, the display names of the
// grammars registered for it.
func (l *Loader) FileTypeNames() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for ft, raws := range l.filetypes {
			names := make([]string, len(raws))
			for i, raw := range raws {
				names[i] = raw.json.Name
			}
			if !yield(ft, names) {
				return
			}
		}
	}
}
