package docs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/kaptinlin/jsonrepair"
)

// DefaultTextField is the object field read as the document body when
// no other selector is configured.
const DefaultTextField = "text"

// Options configures document loading.
type Options struct {
	// TextField is the object field holding the text body.
	// Defaults to "text".
	TextField string

	// JQ is an optional gojq expression evaluated against each source
	// object to produce the text body, e.g. ".title + \": \" + .body".
	// When set it takes precedence over TextField.
	JQ string
}

// Load reads documents from a file. The format is chosen by extension:
// .json (array of strings or objects), .jsonl/.ndjson (one object per
// line), anything else is plain text with one document per non-blank
// line. Malformed JSON is passed through jsonrepair once before the
// load fails.
func Load(path string, opts Options) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("docs: open source: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f, opts)
	case ".jsonl", ".ndjson":
		return LoadJSONLines(f, opts)
	default:
		return LoadText(f)
	}
}

// LoadJSON reads a JSON array of strings or objects.
func LoadJSON(r io.Reader, opts Options) ([]Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("docs: read source: %w", err)
	}

	sel, err := newSelector(opts)
	if err != nil {
		return nil, err
	}

	var items []any
	if err := unmarshalLenient(data, &items); err != nil {
		return nil, fmt.Errorf("docs: parse JSON array: %w", err)
	}

	out := make([]Document, 0, len(items))
	for i, item := range items {
		doc, err := sel.document(item)
		if err != nil {
			return nil, fmt.Errorf("docs: item %d: %w", i, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// LoadJSONLines reads one JSON object per line, skipping blank lines.
func LoadJSONLines(r io.Reader, opts Options) ([]Document, error) {
	sel, err := newSelector(opts)
	if err != nil {
		return nil, err
	}

	var out []Document
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var item any
		if err := unmarshalLenient([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("docs: line %d: %w", line, err)
		}
		doc, err := sel.document(item)
		if err != nil {
			return nil, fmt.Errorf("docs: line %d: %w", line, err)
		}
		out = append(out, doc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("docs: read source: %w", err)
	}
	return out, nil
}

// LoadText reads plain text, one document per non-blank line.
func LoadText(r io.Reader) ([]Document, error) {
	var out []Document
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		out = append(out, Document{Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("docs: read source: %w", err)
	}
	return out, nil
}

// unmarshalLenient unmarshals JSON, attempting to repair malformed
// input before retrying.
func unmarshalLenient(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

// selector turns a parsed source item into a Document.
type selector struct {
	textField string
	jq        *gojq.Query
}

func newSelector(opts Options) (*selector, error) {
	s := &selector{textField: opts.TextField}
	if s.textField == "" {
		s.textField = DefaultTextField
	}
	if opts.JQ != "" {
		q, err := gojq.Parse(opts.JQ)
		if err != nil {
			return nil, fmt.Errorf("docs: parse jq expression: %w", err)
		}
		s.jq = q
	}
	return s, nil
}

func (s *selector) document(item any) (Document, error) {
	switch x := item.(type) {
	case string:
		return Document{Text: x}, nil
	case map[string]any:
		return s.fromObject(x)
	default:
		return Document{}, fmt.Errorf("expected string or object, got %T", item)
	}
}

func (s *selector) fromObject(obj map[string]any) (Document, error) {
	var doc Document

	text, textKey, err := s.extractText(obj)
	if err != nil {
		return doc, err
	}
	doc.Text = text

	idKey := ""
	for _, k := range []string{"id", "_id"} {
		if v, ok := obj[k]; ok {
			doc.ID = idString(v)
			idKey = k
			break
		}
	}

	md := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == textKey || k == idKey {
			continue
		}
		md[k] = v
	}
	if len(md) > 0 {
		if err := ValidateMetadata(md); err != nil {
			return doc, err
		}
		doc.Metadata = md
	}
	return doc, nil
}

// extractText returns the text body and, for the field-based path, the
// key to exclude from metadata.
func (s *selector) extractText(obj map[string]any) (text, key string, err error) {
	if s.jq != nil {
		iter := s.jq.Run(obj)
		v, ok := iter.Next()
		if !ok || v == nil {
			return "", "", fmt.Errorf("jq expression produced no value")
		}
		if jqErr, ok := v.(error); ok {
			return "", "", fmt.Errorf("jq expression: %w", jqErr)
		}
		str, ok := v.(string)
		if !ok {
			return "", "", fmt.Errorf("jq expression produced %T, want string", v)
		}
		return str, "", nil
	}

	v, ok := obj[s.textField]
	if !ok {
		return "", "", fmt.Errorf("field %q not found", s.textField)
	}
	str, ok := v.(string)
	if !ok {
		return "", "", fmt.Errorf("field %q is %T, want string", s.textField, v)
	}
	return str, s.textField, nil
}

func idString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
