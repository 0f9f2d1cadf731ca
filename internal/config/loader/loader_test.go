package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func getByPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := data
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return val, true
		}
		current, ok = val.(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"vscreen.toml", FormatTOML, false},
		{"/etc/vscreen/config.TOML", FormatTOML, false},
		{"vscreen.yaml", FormatYAML, false},
		{"vscreen.yml", FormatYAML, false},
		{"vscreen.json", 0, true},
		{"vscreen", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("FormatFor(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFor(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FormatFor(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewFileLoader(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", "[display]\nstrict = true\n")
	memfs.AddFile("/a.yaml", "display:\n  strict: true\n")

	for _, path := range []string{"/a.toml", "/a.yaml"} {
		t.Run(path, func(t *testing.T) {
			l, err := NewFileLoader(memfs, path)
			if err != nil {
				t.Fatalf("NewFileLoader: %v", err)
			}
			data, err := l.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if v, ok := getByPath(data, "display.strict"); !ok || v != true {
				t.Errorf("display.strict = %v, want true", v)
			}
		})
	}

	if _, err := NewFileLoader(memfs, "/a.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ini error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/vscreen.toml", `
[display]
scale_x = 2
scale_y = 1.5
charmap = "cp850"

[cursor]
blink_rate = "250ms"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/vscreen.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"display.scale_x", int64(2)},
		{"display.scale_y", 1.5},
		{"display.charmap", "cp850"},
		{"cursor.blink_rate", "250ms"},
	}
	for _, tt := range tests {
		got, ok := getByPath(config, tt.path)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v (%T)", tt.path, got, got, tt.want, tt.want)
		}
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/nope.toml").Load()
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[display]\nstrict = = true\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("Path = %q", perr.Path)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if perr.Unwrap() == nil {
		t.Error("Unwrap() = nil")
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[logging]\nlevel = \"warn\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if v, _ := getByPath(config, "logging.level"); v != "warn" {
		t.Errorf("logging.level = %v", v)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/vscreen.yml", `
surface:
  backend: headless
  dpr: 2.0
display:
  autoscale: false
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/vscreen.yml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := getByPath(config, "surface.backend"); v != "headless" {
		t.Errorf("surface.backend = %v", v)
	}
	if v, _ := getByPath(config, "surface.dpr"); v != 2.0 {
		t.Errorf("surface.dpr = %v (%T)", v, v)
	}
	if v, _ := getByPath(config, "display.autoscale"); v != false {
		t.Errorf("display.autoscale = %v", v)
	}
}

func TestYAMLLoader_ParseError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"unterminated flow sequence", "display:\n  cols: 80\n bad: [\n", 2},
		{"no position reported", "display: strict: true\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memfs := NewMemFS()
			memfs.AddFile("/bad.yaml", tt.content)

			_, err := NewYAMLLoaderWithFS(memfs, "/bad.yaml").Load()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if perr.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", perr.Line, tt.line, err)
			}
		})
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"display": map[string]any{"strict": false, "cols": int64(80)},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"display": map[string]any{"strict": true},
		"cursor":  map[string]any{"blink": false},
	}

	got := DeepMerge(Clone(dst), src)

	if v, _ := getByPath(got, "display.strict"); v != true {
		t.Errorf("display.strict = %v, want true", v)
	}
	if v, _ := getByPath(got, "display.cols"); v != int64(80) {
		t.Errorf("display.cols = %v, want 80", v)
	}
	if v, _ := getByPath(got, "cursor.blink"); v != false {
		t.Errorf("cursor.blink = %v, want false", v)
	}
	if v, _ := getByPath(dst, "display.strict"); v != false {
		t.Error("DeepMerge into a clone modified the original")
	}
}

func TestDeepMerge_Nil(t *testing.T) {
	got := DeepMerge(nil, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("DeepMerge(nil, nil) = %v, want empty map", got)
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
