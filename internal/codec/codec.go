// Package codec encodes plans and reports for the renderer and for humans.
// CBOR output uses Core Deterministic Encoding so the same plan always
// produces identical bytes.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"vidcompose/pkg/document"
)

// Format names an output encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

var formats = []Format{JSON, YAML, CBOR}

// FormatList renders the supported encodings for help and error text.
func FormatList() string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// ParseFormat accepts a format name, case-insensitively. "yml" is YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s)", s, FormatList())
	}
}

// Binary reports whether the encoding is unsuitable for a terminal.
func (f Format) Binary() bool { return f == CBOR }

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode writes v in the given format. Document nodes are converted to
// plain values first.
func Encode(w io.Writer, format Format, v any) error {
	if n, ok := v.(document.Node); ok {
		v = n.ToAny()
	}
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	case CBOR:
		buf, err := encMode.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode cbor: %w", err)
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write cbor: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// Marshal returns v encoded in the given format.
func Marshal(format Format, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCBOR reads a CBOR payload back into a document.
func DecodeCBOR(data []byte) (document.Node, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return document.Node{}, fmt.Errorf("decode cbor: %w", err)
	}
	return document.FromAny(v)
}

// LoadDocument reads a template or bindings file. ".cbor" files are decoded
// as CBOR; everything else goes through document.Load.
func LoadDocument(path string) (document.Node, error) {
	if !strings.EqualFold(filepath.Ext(path), ".cbor") {
		return document.Load(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Node{}, fmt.Errorf("read document: %w", err)
	}
	n, err := DecodeCBOR(data)
	if err != nil {
		return document.Node{}, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
