package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringList maps a Postgres text[] column. The pgx stdlib driver hands
// array columns to database/sql as the raw literal form ("{a,b}"), so the
// field has to carry its own Scanner and Valuer.
type StringList []string

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		*l = parseTextArray(v)
		return nil
	case []byte:
		*l = parseTextArray(string(v))
		return nil
	}
	return fmt.Errorf("cannot scan %T into StringList", value)
}

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "{}", nil
	}

	quote := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	var b strings.Builder
	b.WriteByte('{')
	for i, elem := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(quote.Replace(elem))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String(), nil
}

// parseTextArray reads the {a,"b c"} literal form: elements are comma
// separated, quoted when they contain commas, quotes, or spaces, with
// backslash escapes inside quotes. Unquoted NULL elements are dropped.
func parseTextArray(s string) StringList {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil
	}
	s = s[1 : len(s)-1]
	if s == "" {
		return StringList{}
	}

	out := StringList{}
	var elem strings.Builder
	quoted := false
	inQuotes := false
	escaped := false

	flush := func() {
		value := elem.String()
		elem.Reset()
		wasQuoted := quoted
		quoted = false
		if !wasQuoted && value == "NULL" {
			return
		}
		out = append(out, value)
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			elem.WriteByte(c)
			escaped = false
		case c == '\\' && inQuotes:
			escaped = true
		case c == '"':
			inQuotes = !inQuotes
			quoted = true
		case c == ',' && !inQuotes:
			flush()
		default:
			elem.WriteByte(c)
		}
	}
	flush()

	return out
}
