package vm

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Compound is an NBT compound. Lists are *List so they can be appended to in
// place; scalars are int8, int16, int32, int64, float32, float64 and string.
type Compound map[string]any

// List is an NBT list.
type List struct {
	Items []any
}

// ParseSNBT parses stringified NBT such as `{Tags:["a"],n:3b}`.
func ParseSNBT(s string) (any, error) {
	p := &snbtParser{s: s}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i != len(p.s) {
		return nil, fmt.Errorf("unexpected %q after value in %q", p.s[p.i:], s)
	}
	return v, nil
}

type snbtParser struct {
	s string
	i int
}

func (p *snbtParser) skipSpace() {
	for p.i < len(p.s) && (p.s[p.i] == ' ' || p.s[p.i] == '\t') {
		p.i++
	}
}

func (p *snbtParser) peek() byte {
	if p.i < len(p.s) {
		return p.s[p.i]
	}
	return 0
}

func (p *snbtParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return fmt.Errorf("expected %q at offset %d of %q", c, p.i, p.s)
	}
	p.i++
	return nil
}

func (p *snbtParser) value() (any, error) {
	p.skipSpace()
	switch c := p.peek(); c {
	case '{':
		return p.compound()
	case '[':
		return p.list()
	case '"', '\'':
		return p.quoted()
	case 0:
		return nil, fmt.Errorf("unexpected end of %q", p.s)
	default:
		return scalar(p.word()), nil
	}
}

func (p *snbtParser) compound() (any, error) {
	p.i++
	out := Compound{}
	p.skipSpace()
	if p.peek() == '}' {
		p.i++
		return out, nil
	}
	for {
		p.skipSpace()
		var key string
		if c := p.peek(); c == '"' || c == '\'' {
			k, err := p.quoted()
			if err != nil {
				return nil, err
			}
			key = k
		} else {
			key = p.word()
		}
		if key == "" {
			return nil, fmt.Errorf("empty key at offset %d of %q", p.i, p.s)
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[key] = v
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.i++
		case '}':
			p.i++
			return out, nil
		default:
			return nil, fmt.Errorf("expected ',' or '}' at offset %d of %q", p.i, p.s)
		}
	}
}

func (p *snbtParser) list() (any, error) {
	p.i++
	// typed arrays like [I; 1, 2] are read as plain lists
	if len(p.s) > p.i+1 && p.s[p.i+1] == ';' && strings.ContainsRune("BIL", rune(p.s[p.i])) {
		p.i += 2
	}
	out := &List{}
	p.skipSpace()
	if p.peek() == ']' {
		p.i++
		return out, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.i++
		case ']':
			p.i++
			return out, nil
		default:
			return nil, fmt.Errorf("expected ',' or ']' at offset %d of %q", p.i, p.s)
		}
	}
}

func (p *snbtParser) quoted() (string, error) {
	q := p.s[p.i]
	p.i++
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		p.i++
		switch {
		case c == '\\' && p.i < len(p.s):
			b.WriteByte(p.s[p.i])
			p.i++
		case c == q:
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unterminated string in %q", p.s)
}

func (p *snbtParser) word() string {
	start := p.i
	for p.i < len(p.s) && !strings.ContainsRune(",:]} \t", rune(p.s[p.i])) {
		p.i++
	}
	return p.s[start:p.i]
}

// scalar interprets an unquoted SNBT token.
func scalar(tok string) any {
	switch tok {
	case "true":
		return int8(1)
	case "false":
		return int8(0)
	}
	if n := len(tok); n > 1 {
		body := tok[:n-1]
		switch tok[n-1] {
		case 'b', 'B':
			if v, err := strconv.ParseInt(body, 10, 8); err == nil {
				return int8(v)
			}
		case 's', 'S':
			if v, err := strconv.ParseInt(body, 10, 16); err == nil {
				return int16(v)
			}
		case 'l', 'L':
			if v, err := strconv.ParseInt(body, 10, 64); err == nil {
				return v
			}
		case 'f', 'F':
			if v, err := strconv.ParseFloat(body, 32); err == nil {
				return float32(v)
			}
		case 'd', 'D':
			if v, err := strconv.ParseFloat(body, 64); err == nil {
				return v
			}
		}
	}
	if v, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return int32(v)
	}
	if strings.ContainsAny(tok, ".eE") {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			return v
		}
	}
	return tok
}

// FormatSNBT renders a value as stringified NBT.
func FormatSNBT(v any) string {
	switch v := v.(type) {
	case int8:
		return fmt.Sprintf("%db", v)
	case int16:
		return fmt.Sprintf("%ds", v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return fmt.Sprintf("%dL", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32) + "f"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64) + "d"
	case string:
		return strconv.Quote(v)
	case *List:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = FormatSNBT(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case Compound:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + FormatSNBT(v[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return fmt.Sprint(v)
	}
}

// numeric returns the value of a numeric tag.
func numeric(v any) (float64, bool) {
	switch v := v.(type) {
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// measure returns what data get yields for a tag: numbers scaled and
// floored, the length of strings and lists, the size of compounds.
func measure(v any, scale float64) int32 {
	if f, ok := numeric(v); ok {
		return saturate(math.Floor(f * scale))
	}
	switch v := v.(type) {
	case string:
		return int32(len(v))
	case *List:
		return int32(len(v.Items))
	case Compound:
		return int32(len(v))
	}
	return 0
}

// saturate converts to int32, clamping at the bounds.
func saturate(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

// typed converts an execute store result into the named storage type.
func typed(kind string, f float64) (any, error) {
	switch kind {
	case "byte":
		return int8(saturate(math.Trunc(f))), nil
	case "short":
		return int16(saturate(math.Trunc(f))), nil
	case "int":
		return saturate(math.Trunc(f)), nil
	case "long":
		return int64(math.Trunc(f)), nil
	case "float":
		return float32(f), nil
	case "double":
		return f, nil
	}
	return nil, fmt.Errorf("unknown store type %q", kind)
}

// pathNode is one step of an NBT path: a compound key or a list index.
type pathNode struct {
	key     string
	index   int
	isIndex bool
}

func parsePath(s string) ([]pathNode, error) {
	var out []pathNode
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index in path %q", s)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("bad index in path %q", s)
			}
			out = append(out, pathNode{index: n, isIndex: true})
			i += end + 1
		case '"':
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated key in path %q", s)
			}
			out = append(out, pathNode{key: s[i+1 : i+1+end]})
			i += end + 2
		default:
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			out = append(out, pathNode{key: s[start:i]})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	return out, nil
}

func listIndex(l *List, i int) (int, bool) {
	if i < 0 {
		i += len(l.Items)
	}
	return i, i >= 0 && i < len(l.Items)
}

func getPath(root Compound, path []pathNode) (any, bool) {
	var cur any = root
	for _, n := range path {
		if n.isIndex {
			l, ok := cur.(*List)
			if !ok {
				return nil, false
			}
			i, ok := listIndex(l, n.index)
			if !ok {
				return nil, false
			}
			cur = l.Items[i]
			continue
		}
		c, ok := cur.(Compound)
		if !ok {
			return nil, false
		}
		if cur, ok = c[n.key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// parentOf walks to the container holding the last node, creating missing
// compounds on the way.
func parentOf(root Compound, path []pathNode) (any, error) {
	var cur any = root
	for k, n := range path[:len(path)-1] {
		if n.isIndex {
			l, ok := cur.(*List)
			if !ok {
				return nil, fmt.Errorf("not a list")
			}
			i, ok := listIndex(l, n.index)
			if !ok {
				return nil, fmt.Errorf("index %d out of range", n.index)
			}
			cur = l.Items[i]
			continue
		}
		c, ok := cur.(Compound)
		if !ok {
			return nil, fmt.Errorf("not a compound")
		}
		next, ok := c[n.key]
		if !ok {
			if path[k+1].isIndex {
				next = &List{}
			} else {
				next = Compound{}
			}
			c[n.key] = next
		}
		cur = next
	}
	return cur, nil
}

func setPath(root Compound, path []pathNode, v any) error {
	parent, err := parentOf(root, path)
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	if last.isIndex {
		l, ok := parent.(*List)
		if !ok {
			return fmt.Errorf("not a list")
		}
		i, ok := listIndex(l, last.index)
		if !ok {
			return fmt.Errorf("index %d out of range", last.index)
		}
		l.Items[i] = v
		return nil
	}
	c, ok := parent.(Compound)
	if !ok {
		return fmt.Errorf("not a compound")
	}
	c[last.key] = v
	return nil
}

func appendPath(root Compound, path []pathNode, v any) error {
	cur, ok := getPath(root, path)
	if !ok {
		if err := setPath(root, path, &List{}); err != nil {
			return err
		}
		cur, _ = getPath(root, path)
	}
	l, ok := cur.(*List)
	if !ok {
		return fmt.Errorf("not a list")
	}
	l.Items = append(l.Items, v)
	return nil
}

func removePath(root Compound, path []pathNode) bool {
	if _, ok := getPath(root, path); !ok {
		return false
	}
	parent, err := parentOf(root, path)
	if err != nil {
		return false
	}
	last := path[len(path)-1]
	if last.isIndex {
		l := parent.(*List)
		i, _ := listIndex(l, last.index)
		l.Items = append(l.Items[:i], l.Items[i+1:]...)
		return true
	}
	delete(parent.(Compound), last.key)
	return true
}

// clone deep-copies a tag so set from does not alias.
func clone(v any) any {
	switch v := v.(type) {
	case *List:
		out := &List{Items: make([]any, len(v.Items))}
		for i, item := range v.Items {
			out.Items[i] = clone(item)
		}
		return out
	case Compound:
		out := Compound{}
		for k, item := range v {
			out[k] = clone(item)
		}
		return out
	}
	return v
}
