package stdlib

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/value"
)

func init() {
	register("char", 1, false, nativeChar)
	register("ord", 1, false, nativeOrd)
	register("split", 1, true, nativeSplit)
	register("join", 2, false, nativeJoin)
	register("replace", 3, false, nativeReplace)
	register("search", 2, false, nativeSearch)
	register("trim", 1, false, nativeTrim)
	register("lower", 1, false, nativeLower)
	register("upper", 1, false, nativeUpper)
	register("to_hex", 1, false, nativeToHex)
	register("to_bin", 1, false, nativeToBin)
	register("format", 1, true, nativeFormat)
}

func nativeChar(c Caller, args []value.Value) (value.Value, error) {
	n, err := asInt(args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 0x10FFFF {
		return nil, cerr.NewWithInts(cerr.ValueErrorInvalidCharacterOrdinal, n)
	}
	return value.Str(rune(n)), nil
}

func nativeOrd(c Caller, args []value.Value) (value.Value, error) {
	s, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return nil, cerr.New(cerr.ValueErrorInvalidCharacterOrdinal)
	}
	return value.Int(runes[0]), nil
}

// compileRegex re-escapes literal control bytes back to their two-character
// escape form (so a pattern built from a raw tab/newline still reads as the
// user intended) before handing off to the standard regexp engine.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	escaped := escapeRegexControlChars(pattern)
	re, err := regexp.Compile(escaped)
	if err != nil {
		return nil, cerr.NewWithStrs(cerr.ValueErrorCannotCompileRegex, escaped, err.Error())
	}
	return re, nil
}

func escapeRegexControlChars(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// submatchValues turns a FindAllStringSubmatchIndex-style index pair list
// into a captures vector: index 0 is the whole match, the rest are the
// regex's capture groups (empty string for a group that didn't participate).
func submatchValues(s string, m []int) []value.Value {
	n := len(m) / 2
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		lo, hi := m[2*i], m[2*i+1]
		if lo < 0 {
			out[i] = value.Str("")
			continue
		}
		out[i] = value.Str(s[lo:hi])
	}
	return out
}

// nativeSplit splits on whitespace runs when called with a single argument,
// splits into individual characters for an explicit empty pattern, and
// otherwise splits on every regex match.
func nativeSplit(c Caller, args []value.Value) (value.Value, error) {
	s, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return value.NewList(strsToValues(strings.Fields(s))), nil
	}
	pattern, err := asStr(args[1])
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		runes := []rune(s)
		parts := make([]string, len(runes))
		for i, r := range runes {
			parts[i] = string(r)
		}
		return value.NewList(strsToValues(parts)), nil
	}
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	return value.NewList(strsToValues(re.Split(s, -1))), nil
}

func strsToValues(parts []string) []value.Value {
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.Str(p)
	}
	return out
}

func nativeJoin(c Caller, args []value.Value) (value.Value, error) {
	sep, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	for i, v := range items {
		s, ok := v.(value.Str)
		if !ok {
			return nil, cerr.New(cerr.TypeErrorArgMustBeStr, v.Repr())
		}
		parts[i] = string(s)
	}
	return value.Str(strings.Join(parts, sep)), nil
}

// nativeReplace matches `pattern` as a regex against `s`. If the replacer is
// callable it's invoked once per match with a single captures-vector argument
// (whole match at index 0, capture groups after); otherwise it's used as a
// literal replacement string.
func nativeReplace(c Caller, args []value.Value) (value.Value, error) {
	s, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := asStr(args[1])
	if err != nil {
		return nil, err
	}
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	if fn, ok := args[2].(value.Callable); ok {
		matches := re.FindAllStringSubmatchIndex(s, -1)
		if len(matches) == 0 {
			return value.Str(s), nil
		}
		var b strings.Builder
		last := 0
		for _, m := range matches {
			b.WriteString(s[last:m[0]])
			captures := value.NewVector(submatchValues(s, m))
			r, err := c.Call(fn, []value.Value{captures})
			if err != nil {
				return nil, err
			}
			rs, err := asStr(r)
			if err != nil {
				return nil, err
			}
			b.WriteString(rs)
			last = m[1]
		}
		b.WriteString(s[last:])
		return value.Str(b.String()), nil
	}
	repl, err := asStr(args[2])
	if err != nil {
		return nil, err
	}
	return value.Str(re.ReplaceAllString(s, repl)), nil
}

// nativeSearch returns every match of `pattern` in `s` as a list of
// captures-vectors, in the same shape replace's callable replacer sees.
func nativeSearch(c Caller, args []value.Value) (value.Value, error) {
	s, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	pattern, err := asStr(args[1])
	if err != nil {
		return nil, err
	}
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	matches := re.FindAllStringSubmatchIndex(s, -1)
	out := make([]value.Value, len(matches))
	for i, m := range matches {
		out[i] = value.NewVector(submatchValues(s, m))
	}
	return value.NewList(out), nil
}

func nativeTrim(c Caller, args []value.Value) (value.Value, error) {
	s, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	return value.Str(strings.TrimSpace(s)), nil
}

func nativeLower(c Caller, args []value.Value) (value.Value, error) {
	s, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	return value.Str(strings.ToLower(s)), nil
}

func nativeUpper(c Caller, args []value.Value) (value.Value, error) {
	s, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	return value.Str(strings.ToUpper(s)), nil
}

func nativeToHex(c Caller, args []value.Value) (value.Value, error) {
	n, err := asInt(args[0])
	if err != nil {
		return nil, err
	}
	return value.Str(value.FormatInt(n, 16)), nil
}

func nativeToBin(c Caller, args []value.Value) (value.Value, error) {
	n, err := asInt(args[0])
	if err != nil {
		return nil, err
	}
	return value.Str(value.FormatInt(n, 2)), nil
}

// nativeFormat implements %-style templating: %d/%i for ints, %x for hex,
// %b for binary, %s for the natural string form, %r for repr, and %% for a
// literal percent. Any of %d/%x/%b/%s may be preceded by an optional `0`
// zero-pad flag and a width digit run, e.g. %05d, %4x. A leading `0` is
// always taken as the zero-pad flag, so a `0` met after that flag with no
// width digits yet buffered (as in %00d) is rejected as an invalid format
// character, matching the rule that a width can't itself start with a
// redundant leading zero.
func nativeFormat(c Caller, args []value.Value) (value.Value, error) {
	tmpl, err := asStr(args[0])
	if err != nil {
		return nil, err
	}
	rest := args[1:]
	used := 0
	var b strings.Builder
	r := []rune(tmpl)
	for i := 0; i < len(r); {
		if r[i] != '%' {
			b.WriteRune(r[i])
			i++
			continue
		}
		i++
		if i >= len(r) {
			b.WriteByte('%')
			break
		}
		if r[i] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		zeroPad := false
		if r[i] == '0' {
			zeroPad = true
			i++
		}
		var width strings.Builder
		for i < len(r) {
			d := r[i]
			if d >= '1' && d <= '9' {
				width.WriteRune(d)
				i++
				continue
			}
			if d == '0' {
				if width.Len() == 0 {
					return nil, cerr.NewWithStrs(cerr.ValueErrorInvalidFormatCharacter, "0")
				}
				width.WriteRune(d)
				i++
				continue
			}
			break
		}
		if i >= len(r) {
			return nil, cerr.New(cerr.ValueErrorInvalidFormatCharacter)
		}
		w := 0
		if width.Len() > 0 {
			w, _ = strconv.Atoi(width.String())
		}
		spec := r[i]
		i++
		switch spec {
		case 'd', 'i':
			if used >= len(rest) {
				return nil, cerr.New(cerr.ValueErrorMissingRequiredArgumentInStringFormatting)
			}
			n, err := asInt(rest[used])
			if err != nil {
				return nil, err
			}
			used++
			b.WriteString(formatIntWidth(n, 'd', w, zeroPad))
		case 'x':
			if used >= len(rest) {
				return nil, cerr.New(cerr.ValueErrorMissingRequiredArgumentInStringFormatting)
			}
			n, err := asInt(rest[used])
			if err != nil {
				return nil, err
			}
			used++
			b.WriteString(formatIntWidth(n, 'x', w, zeroPad))
		case 'b':
			if used >= len(rest) {
				return nil, cerr.New(cerr.ValueErrorMissingRequiredArgumentInStringFormatting)
			}
			n, err := asInt(rest[used])
			if err != nil {
				return nil, err
			}
			used++
			b.WriteString(formatIntWidth(n, 'b', w, zeroPad))
		case 's':
			if used >= len(rest) {
				return nil, cerr.New(cerr.ValueErrorMissingRequiredArgumentInStringFormatting)
			}
			b.WriteString(formatStrWidth(rest[used].String(), w))
			used++
		case 'r':
			if used >= len(rest) {
				return nil, cerr.New(cerr.ValueErrorMissingRequiredArgumentInStringFormatting)
			}
			b.WriteString(rest[used].Repr())
			used++
		default:
			return nil, cerr.NewWithStrs(cerr.ValueErrorInvalidFormatCharacter, string(spec))
		}
	}
	if used < len(rest) {
		return nil, cerr.New(cerr.ValueErrorNotAllArgumentsUsedInStringFormatting)
	}
	return value.Str(b.String()), nil
}

func formatIntWidth(n int64, spec byte, width int, zeroPad bool) string {
	verb := "%"
	if zeroPad {
		verb += "0"
	}
	if width > 0 {
		verb += strconv.Itoa(width)
	}
	verb += string(spec)
	return fmt.Sprintf(verb, n)
}

func formatStrWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	return fmt.Sprintf("%*s", width, s)
}
