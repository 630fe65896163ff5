// Package fstest builds in-memory source trees for tests.
package fstest

import (
	"strings"
	"testing/fstest"
)

type mapFS struct {
	fstest.MapFS
}

func MapFS() mapFS {
	return mapFS{fstest.MapFS{}}
}

// Add stores body under name after removing the indentation common to its
// lines, so sources can be written as indented raw strings.
func (mfs mapFS) Add(name, body string) mapFS {
	mfs.MapFS[name] = &fstest.MapFile{
		Data: []byte(Dedent(body)),
	}
	return mfs
}

// Sources returns a file system holding each source under its name.
func Sources(files map[string]string) mapFS {
	mfs := MapFS()
	for name, body := range files {
		mfs.Add(name, body)
	}
	return mfs
}

// Dedent removes a leading newline and the longest whitespace prefix shared
// by all non-blank lines of s.
func Dedent(s string) string {
	s = strings.TrimPrefix(s, "\n")
	lines := strings.Split(s, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix, first = indent, false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
