package contracts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"property-service/internal/core/domain"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed schemas
var schemasFS embed.FS

const schemasRoot = "schemas"

// Ключи вида "<Name><Kind>/<major>.0.0", по ним ищутся схемы
const (
	PropertyEventV1         = "PropertyEvent/1.0.0"
	MediaOrphanedEventV1    = "MediaOrphanedEvent/1.0.0"
	CreatePropertyPayloadV1 = "CreatePropertyPayload/1.0.0"
	UpdatePropertyPayloadV1 = "UpdatePropertyPayload/1.0.0"
)

var ErrSchemaNotFound = errors.New("schema not found")

var compiledSchemas map[string]*jsonschema.Schema

func init() {
	schemas, err := compileAll(schemasFS)
	if err != nil {
		// схемы вшиты в бинарник, ошибка здесь - ошибка сборки
		panic(fmt.Sprintf("contracts: %v", err))
	}
	compiledSchemas = schemas
}

func compileAll(fsys fs.FS) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(fsys, schemasRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		f, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		// ресурсы добавляются до компиляции, чтобы работали $ref между схемами
		if err := compiler.AddResource(path, f); err != nil {
			return fmt.Errorf("failed to add schema resource %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking schema resources: %w", err)
	}

	out := make(map[string]*jsonschema.Schema, len(paths))
	for _, path := range paths {
		key, err := keyFromPath(path)
		if err != nil {
			return nil, err
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("could not compile schema %s: %w", path, err)
		}
		out[key] = schema
	}
	return out, nil
}

// keyFromPath: "schemas/events/media-orphaned/v1.json" -> "MediaOrphanedEvent/1.0.0"
func keyFromPath(path string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, schemasRoot+"/"), ".json")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "v") {
		return "", fmt.Errorf("unexpected schema path %q", path)
	}

	var suffix string
	switch parts[0] {
	case "events":
		suffix = "Event"
	case "payloads":
		suffix = "Payload"
	default:
		return "", fmt.Errorf("unknown schema kind %q in %q", parts[0], path)
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString(suffix)

	return fmt.Sprintf("%s/%s.0.0", name.String(), strings.TrimPrefix(parts[2], "v")), nil
}

// ValidateEvent проверяет тело сообщения по схеме события
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	schema, ok := compiledSchemas[eventType+"/"+eventVersion]
	if !ok {
		return fmt.Errorf("%w: event '%s' version '%s'", ErrSchemaNotFound, eventType, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// ValidatePayload проверяет тело запроса клиента. Нарушение схемы - *domain.ValidationError с путем до поля.
func ValidatePayload(key string, payload interface{}) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSchemaNotFound, key)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return violation(ve)
		}
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// violation берет самую глубокую причину: она указывает на конкретное поле
func violation(ve *jsonschema.ValidationError) *domain.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	field := strings.ReplaceAll(strings.TrimPrefix(ve.InstanceLocation, "/"), "/", ".")
	return domain.NewValidationError(field, ve.Message)
}
