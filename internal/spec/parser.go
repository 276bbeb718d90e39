package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/riahtu/pmtrain/internal/lua"
	"github.com/riahtu/pmtrain/internal/models"
	"github.com/riahtu/pmtrain/internal/trainers"
)

// documentValidate checks document structure. Initialized in init() with
// custom validators.
var documentValidate *validator.Validate

func init() {
	documentValidate = validator.New()
	if err := documentValidate.RegisterValidation("has_kind", validateHasKind); err != nil {
		panic(fmt.Sprintf("failed to register has_kind validator: %v", err))
	}
}

// validateHasKind reports whether a component node carries a non-empty
// string Kind.
func validateHasKind(fl validator.FieldLevel) bool {
	node, ok := fl.Field().Interface().(models.Node)
	if !ok {
		return false
	}
	kind, ok := node.Kind()
	return ok && kind != ""
}

var extensions = []string{".json", ".yaml", ".yml", ".lua"}

// Parse reads a pipeline document. The format follows the file extension.
// Messages a Lua script logs are written to the default slog logger at
// debug level.
func Parse(path string) (*models.Document, error) {
	if lua.IsLuaSpec(path) {
		rt := lua.NewRuntime(trainers.Default().Kinds())
		doc, err := rt.Load(path)
		for _, msg := range rt.GetLogs() {
			slog.Debug("pipeline script log", "script", path, "message", msg)
		}
		return doc, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	doc, err := ParseBytes(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	doc.Source = path
	if doc.Name == "" {
		base := filepath.Base(path)
		doc.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}

// ParseBytes decodes a JSON or YAML document. ext selects the format.
func ParseBytes(data []byte, ext string) (*models.Document, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		var doc models.Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
		}
		return &doc, nil
	default:
		return nil, fmt.Errorf("unsupported pipeline format %q", ext)
	}
}

// parseJSON accepts a document object or a bare array of components.
// Numbers are kept as json.Number so integer params keep full precision.
func parseJSON(data []byte) (*models.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc models.Document
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := dec.Decode(&doc.Components); err != nil {
			return nil, fmt.Errorf("failed to parse pipeline JSON: %w", err)
		}
		return &doc, nil
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline JSON: %w", err)
	}
	return &doc, nil
}

// LoadAll reads every pipeline document in dirs, keyed by name. Later dirs
// override earlier ones.
func LoadAll(dirs []string) (map[string]*models.Document, error) {
	docs := make(map[string]*models.Document)

	for _, dir := range dirs {
		if err := loadFromDir(dir, docs); err != nil {
			// Skip directories that don't exist
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}

	return docs, nil
}

func loadFromDir(dir string, docs map[string]*models.Document) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := filepath.Ext(name)
		if !supported(ext) {
			continue
		}

		path := filepath.Join(dir, name)
		doc, err := Parse(path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		docs[doc.Name] = doc
	}

	return nil
}

func supported(ext string) bool {
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Validate checks document structure: a name and a Kind on every
// component. Parameters are checked at assembly.
func Validate(doc *models.Document) error {
	err := documentValidate.Struct(doc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate pipeline: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return fmt.Errorf("invalid pipeline %q: %s", doc.Name, strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	if i := strings.Index(field, "["); i >= 0 {
		// Components[2] -> components[2]
		field = strings.ToLower(field[:i]) + field[i:]
	} else {
		field = strings.ToLower(field)
	}

	switch fe.Tag() {
	case "required":
		if strings.HasPrefix(field, "components[") {
			return field + " must be an object"
		}
		return field + " is required"
	case "has_kind":
		return field + " must have a string " + models.KindField
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
