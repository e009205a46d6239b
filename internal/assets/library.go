package assets

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/physiomath/go-physiomath/internal/fileutil"
)

//go:embed styles templates
var builtin embed.FS

// layer is one source of assets. read takes a slash-separated path relative
// to the layer root and reports missing files with fs.ErrNotExist.
type layer struct {
	origin string
	read   func(name string) ([]byte, error)
}

func builtinLayer() layer {
	return layer{origin: "embedded", read: builtin.ReadFile}
}

func dirLayer(basePath string) (layer, error) {
	if basePath == "" {
		return layer{}, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return layer{}, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return layer{}, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return layer{}, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, abs)
	}

	read := func(name string) ([]byte, error) {
		f, err := os.OpenInRoot(abs, filepath.FromSlash(name))
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return io.ReadAll(f)
	}
	return layer{origin: abs, read: read}, nil
}

// templateSet reads templates/{name}/ from the layer. No file at all means
// the layer does not have the set; some missing means it is incomplete.
func (ly layer) templateSet(name string) (*TemplateSet, error) {
	files := make(map[string]string, len(templateFiles))
	var missing []string
	for _, file := range templateFiles {
		data, err := ly.read(path.Join("templates", name, file))
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, file)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", ErrAssetRead, name, file, err)
		}
		files[file] = string(data)
	}

	switch {
	case len(missing) == len(templateFiles):
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	case len(missing) > 0:
		return nil, fmt.Errorf("%w: %q in %s lacks %s",
			ErrIncompleteTemplateSet, name, ly.origin, strings.Join(missing, ", "))
	}
	return newTemplateSet(name, files), nil
}

// Library resolves stylesheets and page sets through its layers, first
// layer first. A layer that lacks an asset defers to the next one; any
// other failure stops the lookup.
type Library struct {
	layers []layer
}

// Builtin returns a Library over the embedded assets only.
func Builtin() *Library {
	return &Library{layers: []layer{builtinLayer()}}
}

// Open returns a Library whose assets in basePath override the embedded
// ones. An empty basePath is the same as Builtin.
func Open(basePath string) (*Library, error) {
	if basePath == "" {
		return Builtin(), nil
	}
	custom, err := dirLayer(basePath)
	if err != nil {
		return nil, err
	}
	return &Library{layers: []layer{custom, builtinLayer()}}, nil
}

// Custom reports whether an asset directory overrides the embedded assets.
func (l *Library) Custom() bool {
	return len(l.layers) > 1
}

// Style returns styles/{name}.css.
func (l *Library) Style(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	file := path.Join("styles", name+".css")
	for _, ly := range l.layers {
		data, err := ly.read(file)
		switch {
		case err == nil:
			return string(data), nil
		case errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return "", fmt.Errorf("%w: %s: %w", ErrAssetRead, file, err)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
}

// TemplateSet returns the page set templates/{name}/.
func (l *Library) TemplateSet(name string) (*TemplateSet, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	for _, ly := range l.layers {
		set, err := ly.templateSet(name)
		if errors.Is(err, ErrTemplateSetNotFound) {
			continue
		}
		return set, err
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
}

// ResolveStyle turns a style option into CSS. The option is CSS text when
// it contains '{', a file path when it contains a separator, and a style
// name otherwise. Empty selects DefaultStyleName.
func (l *Library) ResolveStyle(option string) (string, error) {
	switch {
	case option == "":
		return l.Style(DefaultStyleName)
	case strings.Contains(option, "{"):
		return option, nil
	case fileutil.IsFilePath(option):
		data, err := os.ReadFile(option) // #nosec G304 -- stylesheet chosen by the user
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrAssetRead, err)
		}
		return string(data), nil
	}
	return l.Style(option)
}
