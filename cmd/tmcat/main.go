// Command tmcat renders a source file to the terminal with TextMate
// grammar-based syntax highlighting, using 24-bit ANSI escapes.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/halvorsen/grammarcore"
	"github.com/halvorsen/grammarcore/highlight"
	"github.com/halvorsen/grammarcore/loader"
	"github.com/halvorsen/grammarcore/theme"
)

var grammarDir = "share/tmcat/grammars"
var themeDir = "share/tmcat/themes"

func main() {
	var grammarName, themeName string
	var transparent, doList bool
	flag.StringVar(&grammarName, "syntax", "", "scopeName's file type, e.g. \"go\"")
	flag.StringVar(&themeName, "theme", "default", "theme name under the theme directory")
	flag.BoolVar(&transparent, "transparent", false, "don't fill in the theme's default fore/background")
	flag.BoolVar(&doList, "list", false, "list all known file types and exit")
	flag.Parse()

	userdir, userdirErr := os.UserHomeDir()

	ld, _ := loader.NewLoader(func(yield func(string) bool) {
		for _, dir := range []string{
			filepath.Join("/usr", grammarDir),
			joinIfHome(userdirErr, userdir, grammarDir),
		} {
			if dir == "" {
				continue
			}
			entries, _ := os.ReadDir(dir)
			for _, entry := range entries {
				if !entry.IsDir() && !yield(path.Join(dir, entry.Name())) {
					return
				}
			}
		}
	})

	if doList {
		fmt.Println("File Types:")
		fts := slices.Collect(ld.FileTypes())
		names := maps.Collect(ld.FileTypeNames())
		slices.Sort(fts)
		for _, ft := range fts {
			fmt.Printf("- %s: %s\n", ft, strings.Join(names[ft], ", "))
		}
		os.Exit(1)
	}

	themePath := findTheme(filepath.Join("/usr", themeDir), themeName)
	if themePath == "" && userdirErr == nil {
		themePath = findTheme(filepath.Join(userdir, ".local", themeDir), themeName)
	}
	if themePath == "" {
		fmt.Fprintf(os.Stderr, "failed to find theme `%s`\n", themeName)
		os.Exit(1)
	}

	sourceFile := os.Stdin
	defer sourceFile.Close()
	if flag.NArg() > 0 {
		name := flag.Arg(0)
		var err error
		sourceFile, err = os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load file `%s`: %v\n", name, err)
			os.Exit(1)
		}
		if grammarName == "" {
			grammarName = strings.TrimPrefix(path.Ext(name), ".")
		}
	}

	sourceBytes, err := io.ReadAll(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read source file: %v\n", err)
		os.Exit(1)
	}

	grm, err := ld.FromFileType(grammarName, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load grammar `%s`: %v\n", grammarName, err)
		os.Exit(1)
	}
	if grm.FirstLine != nil && !grammarcore.FirstLineMatch(sourceBytes, grm.FirstLine) {
		fmt.Fprintf(os.Stderr, "warning: source does not match grammar's firstLineMatch\n")
	}

	themeBytes, err := os.ReadFile(themePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read theme: %v\n", err)
		os.Exit(1)
	}
	t, err := theme.ParseThemeBytes(themeBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse theme: %v\n", err)
		os.Exit(1)
	}

	renderer := grammarcore.NewRenderer(sourceBytes, grm.Root)
	var mapping []theme.ColorMapping
	for {
		line, ok := renderer.RenderNextLine()
		if !ok {
			break
		}
		mapping = append(mapping, t.MapSpans(highlight.Line(line, ld.Registry))...)
	}

	renderANSI(os.Stdout, string(sourceBytes), mapping, t, transparent)
}

func joinIfHome(err error, home, sub string) string {
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", sub)
}

// findTheme returns the first of dir/name.json or dir/name.tmTheme that
// exists, or "" if neither does.
func findTheme(dir, name string) string {
	for _, ext := range []string{".json", ".tmTheme"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func renderANSI(w io.Writer, source string, mapping []theme.ColorMapping, t *theme.Theme, transparent bool) {
	cur := -1
	for i, chr := range source {
		if cur < len(mapping)-1 && mapping[cur+1].Offset == i {
			cur++
			tok := mapping[cur]
			if !transparent {
				if tok.Foreground == nil {
					tok.Foreground = t.Foreground
				}
				if tok.Background == nil {
					tok.Background = t.Background
				}
			}

			var csi bytes.Buffer
			csi.WriteString("\033[0")
			if tok.FontStyle.Has(theme.Bold) {
				csi.WriteString(";1")
			}
			if tok.FontStyle.Has(theme.Italic) {
				csi.WriteString(";3")
			}
			if tok.FontStyle.Has(theme.Underline) {
				csi.WriteString(";4")
			}
			if tok.FontStyle.Has(theme.Strikethrough) {
				csi.WriteString(";9")
			}
			if tok.Foreground != nil {
				r, g, b, _ := tok.Foreground.RGBA()
				fmt.Fprintf(&csi, ";38;2;%d;%d;%d", r>>8, g>>8, b>>8)
			}
			if tok.Background != nil {
				r, g, b, _ := tok.Background.RGBA()
				fmt.Fprintf(&csi, ";48;2;%d;%d;%d", r>>8, g>>8, b>>8)
			}
			csi.WriteByte('m')
			csi.WriteTo(w)
		}
		fmt.Fprintf(w, "%c", chr)
	}
	fmt.Fprint(w, "\033[0m\n")
}
