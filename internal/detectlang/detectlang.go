// Package detectlang maps source files to programming languages by extension.
package detectlang

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Lang represents a detected programming language.
type Lang string

const (
	LangUnknown    Lang = ""
	LangMultiple   Lang = "multiple"
	LangGo         Lang = "go"
	LangJava       Lang = "java"
	LangKotlin     Lang = "kt"
	LangScala      Lang = "scala"
	LangPython     Lang = "py"
	LangRuby       Lang = "rb"
	LangRust       Lang = "rs"
	LangJavaScript Lang = "js"
	LangTypeScript Lang = "ts"
	LangC          Lang = "c"
	LangCpp        Lang = "cpp"
	LangCSharp     Lang = "cs"
)

var extToLang = map[string]Lang{
	".go":    LangGo,
	".java":  LangJava,
	".kt":    LangKotlin,
	".kts":   LangKotlin,
	".scala": LangScala,
	".py":    LangPython,
	".rb":    LangRuby,
	".rs":    LangRust,
	".js":    LangJavaScript,
	".mjs":   LangJavaScript,
	".jsx":   LangJavaScript,
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".c":     LangC,
	".h":     LangC,
	".cpp":   LangCpp,
	".cc":    LangCpp,
	".hpp":   LangCpp,
	".cs":    LangCSharp,
}

// ForPath returns the language for path's extension, or LangUnknown.
func ForPath(path string) Lang {
	if lang, ok := extToLang[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LangUnknown
}

// SkipDir reports whether a directory walk should not descend into a directory named name: hidden directories, vendored code, test fixtures, and JS dependencies.
func SkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "vendor", "testdata", "node_modules":
		return true
	}
	return false
}

// Detect returns the dominant language under path. For a file, it is ForPath(path). For a directory, source files are counted recursively (honoring SkipDir)
// and the plurality language is returned; LangMultiple on a tie, LangUnknown if there are no recognized files.
func Detect(path string) (Lang, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LangUnknown, fmt.Errorf("detectlang: stat: %w", err)
	}
	if !info.IsDir() {
		return ForPath(path), nil
	}

	counts := make(map[Lang]int)
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if lang := ForPath(p); lang != LangUnknown {
			counts[lang]++
		}
		return nil
	})
	if err != nil {
		return LangUnknown, fmt.Errorf("detectlang: walk %s: %w", path, err)
	}

	maxCount := 0
	best := LangUnknown
	tied := false
	for lang, count := range counts {
		switch {
		case count > maxCount:
			maxCount, best, tied = count, lang, false
		case count == maxCount:
			tied = true
		}
	}
	if tied {
		return LangMultiple, nil
	}
	return best, nil
}
