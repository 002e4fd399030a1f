package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vango-dev/mcproto/pkg/codec"
	"github.com/vango-dev/mcproto/pkg/protocol"
	"github.com/vango-dev/mcproto/pkg/schema"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "M101",
			wantMsg: "Invalid config file",
			wantCat: CategoryConfig,
		},
		{
			name:    "cli error",
			code:    "M141",
			wantMsg: "Unknown phase",
			wantCat: CategoryCLI,
		},
		{
			name:    "wire error",
			code:    "M160",
			wantMsg: "Truncated input",
			wantCat: CategoryWire,
		},
		{
			name:    "unknown error code",
			code:    "M999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Offset != -1 {
				t.Errorf("Offset = %d, want -1", err.Offset)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "capture.mccap")
	if err.Message != `file "capture.mccap" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestDiagnostic_Error(t *testing.T) {
	err := New("M141")
	if got, want := err.Error(), "M141: Unknown phase"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(fmt.Errorf("bogus"))
	if got, want := err.Error(), "M141: Unknown phase: bogus"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Diagnostic{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestDiagnostic_WithLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcproto.toml")
	content := "[log]\nlevel = \"info\"\n\n[limits]\nmax_depth = -1\nmax_allocation = 1024\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("M102").WithLocation(path, 5, 13)
	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 5 || err.Location.Column != 13 {
		t.Errorf("Location = %+v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Fatal("expected context lines")
	}

	found := false
	for _, line := range err.Context {
		if strings.Contains(line, "max_depth") {
			found = true
		}
	}
	if !found {
		t.Errorf("context %q does not contain the error line", err.Context)
	}
}

func TestDiagnostic_Wrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := New("M151").Wrap(inner)
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap() should return the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "M101") != nil {
		t.Error("FromError(nil) should return nil")
	}

	original := New("M140")
	if got := FromError(fmt.Errorf("outer: %w", original), "M101"); got != original {
		t.Error("FromError should return the Diagnostic found in the chain")
	}

	got := FromError(fmt.Errorf("plain"), "M101")
	if got.Code != "M101" || got.Wrapped == nil {
		t.Errorf("FromError = %+v", got)
	}
}

func TestFromWire(t *testing.T) {
	shape := schema.Record("Ping", schema.F("time", schema.Int64()))
	_, err := codec.Decode([]byte{1, 2, 3}, shape)
	if err == nil {
		t.Fatal("expected decode error")
	}

	d := FromWire(err)
	if d.Code != "M160" {
		t.Errorf("Code = %q, want M160", d.Code)
	}
	if d.Category != CategoryWire {
		t.Errorf("Category = %q", d.Category)
	}
	if d.Path != "Ping.time" {
		t.Errorf("Path = %q, want Ping.time", d.Path)
	}
	if d.Offset != 0 {
		t.Errorf("Offset = %d, want 0", d.Offset)
	}
	if !stderrors.Is(d, protocol.ErrTruncatedInput) {
		t.Error("diagnostic should wrap the codec error")
	}

	if FromWire(nil) != nil {
		t.Error("FromWire(nil) should return nil")
	}
	if got := FromWire(protocol.ErrFrameTooLarge); got.Code != "M167" || got.Offset != -1 {
		t.Errorf("FromWire(frame too large) = %+v", got)
	}
	if got := FromWire(fmt.Errorf("unrelated")); got.Code != "M169" {
		t.Errorf("FromWire(unrelated).Code = %q", got.Code)
	}
}

func TestWireCodesRegistered(t *testing.T) {
	for kind, code := range wireCodes {
		if _, ok := GetTemplate(code); !ok {
			t.Errorf("code %s for %s is not registered", code, kind)
		}
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		loc  *Location
		want string
	}{
		{&Location{File: "mcproto.toml", Line: 3, Column: 7}, "mcproto.toml:3:7"},
		{&Location{File: "mcproto.toml", Line: 3}, "mcproto.toml:3"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("M160").WithSuggestion("Check the phase and direction flags")
	err.Path = "JoinGame.level_type"
	err.Offset = 9
	out := err.Format()

	for _, want := range []string{
		"ERROR M160: Truncated input",
		"JoinGame.level_type at byte 9",
		"The input ended before the value was complete.",
		"Hint: Check the phase and direction flags",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains color codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("M102")
	err.Location = &Location{File: "mcproto.toml", Line: 4}
	if got, want := err.FormatCompact(), "mcproto.toml:4: M102: Invalid config value"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}

	wire := New("M166")
	wire.Path = "Handshake.server_address"
	if got, want := wire.FormatCompact(), "M166: Malformed input (Handshake.server_address)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("M161").Wrap(protocol.ErrMalformedVarInt)
	err.Offset = 0

	var got map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if got["code"] != "M161" || got["category"] != "wire" {
		t.Errorf("FormatJSON() = %v", got)
	}
	if got["offset"] != float64(0) {
		t.Errorf("offset = %v, want 0", got["offset"])
	}
	if _, ok := got["location"]; ok {
		t.Error("location should be omitted")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, New("M100"))
	if !strings.Contains(buf.String(), "M100: Config file not found") {
		t.Errorf("Fprint(diagnostic) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, fmt.Errorf("boom"))
	if !strings.Contains(buf.String(), "ERROR: boom") {
		t.Errorf("Fprint(error) = %q", buf.String())
	}
}

func TestRegister(t *testing.T) {
	Register("M199", ErrorTemplate{Category: CategoryCLI, Message: "Custom"})
	defer delete(registry, "M199")

	if got := New("M199"); got.Message != "Custom" {
		t.Errorf("Message = %q", got.Message)
	}
	found := false
	for _, code := range GetAllCodes() {
		if code == "M199" {
			found = true
		}
	}
	if !found {
		t.Error("GetAllCodes() missing registered code")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than 10", l)
		}
	}
	if strings.Join(lines, " ") != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("wrapText lost words: %q", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}
