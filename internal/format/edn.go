package format

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// WriteEDN writes v as EDN. Values go through their JSON encoding first, so json tags
// and custom marshalers apply. Keys become kebab-case keywords ("createdAt" ->
// :created-at); numbers keep their literal form.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := ednEncoder{pretty: pretty, indent: 2}
	enc.value(&buf, x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednEncoder struct {
	pretty bool
	indent int
}

func (e ednEncoder) value(buf *bytes.Buffer, v any, level int) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		buf.WriteString(strconv.Quote(t))
	case json.Number:
		buf.WriteString(t.String())
	case []any:
		e.open(buf, '[')
		for i, it := range t {
			e.sep(buf, i, level)
			e.value(buf, it, level+1)
		}
		e.close(buf, ']', len(t), level)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.open(buf, '{')
		for i, k := range keys {
			e.sep(buf, i, level)
			buf.WriteString(Keyword(k))
			buf.WriteByte(' ')
			e.value(buf, t[k], level+1)
		}
		e.close(buf, '}', len(keys), level)
	default:
		buf.WriteString("nil")
	}
}

func (e ednEncoder) open(buf *bytes.Buffer, c byte) {
	buf.WriteByte(c)
}

// sep writes what goes before the i-th element of a collection at level.
func (e ednEncoder) sep(buf *bytes.Buffer, i, level int) {
	switch {
	case e.pretty:
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
	case i > 0:
		buf.WriteByte(' ')
	}
}

func (e ednEncoder) close(buf *bytes.Buffer, c byte, n, level int) {
	if e.pretty && n > 0 {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", level*e.indent))
	}
	buf.WriteByte(c)
}

// Keyword turns a JSON key into an EDN keyword: camelCase and spaces become
// kebab-case, a leading underscore is kept.
func Keyword(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.WriteByte(':')
	prevLower := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '_' && b.Len() > 1:
			b.WriteByte('-')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}
