// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/BlockOG/bundle-lua/pkg/luamod"
)

// funcHeader matches the first line of a definition written by EmitLazy.
var funcHeader = regexp.MustCompile(`^____bundle__funcs\[("(?:[^"\\\n]|\\.)*")\] = function\(\)\n`)

// Load returns a bundle for text.
//
// Text written by EmitLazy is split back into its module records, in
// emission order, and the main script it was built around, so that
// EmitLazy(Load(text)) == text. Any other text becomes the main script of an
// empty bundle. Definitions are read up to the first one that does not match
// the emitted layout; everything from there on stays part of main.
func Load(text string) *Bundle {
	rest, ok := strings.CutPrefix(text, LazyShim)
	if !ok {
		return New(text)
	}

	var records []Record
	for {
		m := funcHeader.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		id, ok := unquote(rest[m[2]:m[3]])
		if !ok {
			break
		}
		body := rest[m[1]:]
		end := strings.Index(body, "\n"+funcClose)
		if end < 0 {
			break
		}
		records = append(records, Record{Identifier: luamod.Identifier(id), Source: body[:end]})
		rest = body[end+1+len(funcClose):]
	}

	// Nothing recognizable: keep the shim with main so its own definitions
	// still have a table to land in.
	if len(records) == 0 {
		return New(text)
	}

	b := New(rest)
	for _, r := range records {
		b.Add(r.Identifier, r.Source)
	}
	return b
}

// unquote reverses Quote.
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	s = s[1 : len(s)-1]

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", false
		}
		switch e := s[i]; e {
		case '"', '\\':
			sb.WriteByte(e)
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			if i+3 > len(s) || !isDigits(s[i:i+3]) {
				return "", false
			}
			n, err := strconv.Atoi(s[i : i+3])
			if err != nil || n > 255 {
				return "", false
			}
			sb.WriteByte(byte(n))
			i += 2
		}
	}
	return sb.String(), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
