package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

// OpenAPI accumulates a document as routes are registered. Named struct types
// become component schemas referenced by $ref.
type OpenAPI struct {
	mu      sync.RWMutex
	spec    *openapi3.T
	schemas map[reflect.Type]string
}

func New(title, version string) *OpenAPI {
	return &OpenAPI{
		spec: &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:   title,
				Version: version,
			},
			Paths: openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas:         make(openapi3.Schemas),
				SecuritySchemes: make(openapi3.SecuritySchemes),
			},
		},
		schemas: make(map[reflect.Type]string),
	}
}

func (o *OpenAPI) Description(desc string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Info.Description = desc
	return o
}

func (o *OpenAPI) Server(url, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Servers = append(o.spec.Servers, &openapi3.Server{URL: url, Description: description})
	return o
}

func (o *OpenAPI) Tag(name, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Tags = append(o.spec.Tags, &openapi3.Tag{Name: name, Description: description})
	return o
}

func (o *OpenAPI) BearerAuth(name, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  description,
		},
	}
	return o
}

func (o *OpenAPI) CookieAuth(name, cookieName, description string) *OpenAPI {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:        "apiKey",
			Name:        cookieName,
			In:          "cookie",
			Description: description,
		},
	}
	return o
}

func (o *OpenAPI) Spec() *openapi3.T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.spec
}

func (o *OpenAPI) JSON() ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return json.MarshalIndent(o.spec, "", "  ")
}

func (o *OpenAPI) YAML() ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	intermediate, err := o.spec.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(intermediate)
}

func (o *OpenAPI) JSONHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := o.JSON()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render API description")
		}
		return c.JSONBlob(http.StatusOK, data)
	}
}

func (o *OpenAPI) YAMLHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := o.YAML()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render API description")
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	}
}

func (o *OpenAPI) Document(method, path string) *RouteBuilder {
	return &RouteBuilder{
		openapi:   o,
		method:    strings.ToUpper(method),
		path:      path,
		operation: &openapi3.Operation{Responses: openapi3.NewResponses()},
	}
}

func (o *OpenAPI) addOperation(method, path string, op *openapi3.Operation) {
	o.mu.Lock()
	defer o.mu.Unlock()

	openAPIPath := echoPathToOpenAPI(path)
	item := o.spec.Paths.Find(openAPIPath)
	if item == nil {
		item = &openapi3.PathItem{}
		o.spec.Paths.Set(openAPIPath, item)
	}
	item.SetOperation(method, op)
}

func echoPathToOpenAPI(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			parts[i] = "{" + name + "}"
		}
	}
	return strings.Join(parts, "/")
}

func (o *OpenAPI) schemaFor(example any) *openapi3.SchemaRef {
	o.mu.Lock()
	defer o.mu.Unlock()

	if example == nil {
		return openapi3.NewObjectSchema().NewRef()
	}
	return o.schemaFromType(reflect.TypeOf(example))
}

func (o *OpenAPI) schemaFromType(t reflect.Type) *openapi3.SchemaRef {
	if t.Kind() == reflect.Pointer {
		ref := o.schemaFromType(t.Elem())
		if ref.Value != nil {
			ref.Value.Nullable = true
		}
		return ref
	}

	if t.PkgPath() == "time" && t.Name() == "Time" {
		return openapi3.NewDateTimeSchema().NewRef()
	}

	switch t.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema().NewRef()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return openapi3.NewIntegerSchema().NewRef()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema().WithMin(0).NewRef()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema().NewRef()
	case reflect.Bool:
		return openapi3.NewBoolSchema().NewRef()
	case reflect.Slice, reflect.Array:
		schema := openapi3.NewArraySchema()
		schema.Items = o.schemaFromType(t.Elem())
		return schema.NewRef()
	case reflect.Map:
		schema := openapi3.NewObjectSchema()
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: o.schemaFromType(t.Elem())}
		return schema.NewRef()
	case reflect.Struct:
		return o.structSchema(t)
	default:
		return openapi3.NewObjectSchema().NewRef()
	}
}

func (o *OpenAPI) structSchema(t reflect.Type) *openapi3.SchemaRef {
	if t.Name() == "" {
		return o.buildStruct(t).NewRef()
	}

	if name, ok := o.schemas[t]; ok {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
	}

	name := t.Name()
	o.schemas[t] = name
	o.spec.Components.Schemas[name] = o.buildStruct(t).NewRef()

	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

// buildStruct reads json tags for names and omitempty, doc tags for
// descriptions, example tags for examples and enum tags (comma separated).
func (o *OpenAPI) buildStruct(t reflect.Type) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Properties = make(openapi3.Schemas)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		tagParts := strings.Split(jsonTag, ",")
		name := field.Name
		if tagParts[0] != "" {
			name = tagParts[0]
		}

		ref := o.schemaFromType(field.Type)
		if ref.Ref == "" && ref.Value != nil {
			if doc := field.Tag.Get("doc"); doc != "" {
				ref.Value.Description = doc
			}
			if ex := field.Tag.Get("example"); ex != "" {
				ref.Value.Example = ex
			}
			if enum := field.Tag.Get("enum"); enum != "" {
				for _, v := range strings.Split(enum, ",") {
					ref.Value.Enum = append(ref.Value.Enum, v)
				}
			}
		}
		schema.Properties[name] = ref

		optional := false
		for _, opt := range tagParts[1:] {
			if opt == "omitempty" {
				optional = true
			}
		}
		if !optional {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}
