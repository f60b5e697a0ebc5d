package resource

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Properties is a flat key/value map read from a properties file.
type Properties map[string]string

// LoadProperties reads "key=value" or "key: value" lines. Blank lines and
// lines starting with '#' or '!' are skipped, a trailing backslash joins a
// line with the next, and later keys override earlier ones.
func LoadProperties(r io.Reader) (Properties, error) {
	props := make(Properties)
	sc := bufio.NewScanner(r)

	var pending strings.Builder
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if pending.Len() == 0 && (line == "" || line[0] == '#' || line[0] == '!') {
			continue
		}
		if strings.HasSuffix(line, `\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		pending.WriteString(line)
		full := pending.String()
		pending.Reset()

		i := strings.IndexAny(full, "=:")
		if i <= 0 {
			return nil, fmt.Errorf("properties line %d: missing key or separator", lineNo)
		}
		props[strings.TrimSpace(full[:i])] = strings.TrimSpace(full[i+1:])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if pending.Len() > 0 {
		return nil, fmt.Errorf("properties line %d: continuation at end of input", lineNo)
	}
	return props, nil
}

// LoadPropertiesFrom reads a properties resource through l.
func LoadPropertiesFrom(l Loader, name string) (Properties, error) {
	rc, err := l.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return LoadProperties(rc)
}

// Store writes p as sorted "key=value" lines.
func (p Properties) Store(w io.Writer) error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bw := bufio.NewWriter(w)
	for _, k := range keys {
		fmt.Fprintf(bw, "%s=%s\n", k, p[k])
	}
	return bw.Flush()
}

// Get returns the value for key, or def when it is absent.
func (p Properties) Get(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}
