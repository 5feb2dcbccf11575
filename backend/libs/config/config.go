package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPathEnv = "CONFIG_FILE"

var durationType = reflect.TypeOf(time.Duration(0))

// LoadConfig hydrates the provided struct pointer in three passes: `default:"..."` tags,
// then the YAML file named by CONFIG_FILE (optional), then environment variables.
// Nested structs get automatic ENV keys (PARENT_CHILD) unless an explicit `env:"KEY"`
// tag is set; `env:"-"` keeps a field out of the environment.
func LoadConfig(target interface{}) error {
	if target == nil {
		return errors.New("config: target is nil")
	}

	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return errors.New("config: target must be pointer to struct")
	}
	root := val.Elem()

	if err := walk(root, "", applyDefault); err != nil {
		return err
	}

	if path := os.Getenv(defaultConfigPathEnv); path != "" {
		if err := LoadFile(path, target); err != nil {
			return err
		}
	}

	return walk(root, "", applyEnv)
}

// LoadFile decodes a YAML file on top of the current target values.
func LoadFile(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	return nil
}

// leaf is a settable scalar field found by walk. envKey is empty for `env:"-"`.
type leaf struct {
	value  reflect.Value
	field  reflect.StructField
	envKey string
}

func walk(v reflect.Value, prefix string, visit func(leaf) error) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fv, sf := v.Field(i), t.Field(i)
		if !fv.CanSet() {
			continue
		}

		key := envKeyFor(prefix, sf)
		if fv.Kind() == reflect.Struct && fv.Type() != durationType {
			next := key
			if sf.Anonymous {
				next = prefix
			}
			if err := walk(fv, next, visit); err != nil {
				return err
			}
			continue
		}

		if err := visit(leaf{value: fv, field: sf, envKey: key}); err != nil {
			return err
		}
	}
	return nil
}

func envKeyFor(prefix string, sf reflect.StructField) string {
	raw := sf.Tag.Get("env")
	switch raw {
	case "-":
		return ""
	case "":
		return normalizeKey(prefix, sf.Name)
	default:
		return normalizeKey("", raw)
	}
}

func applyDefault(l leaf) error {
	def, ok := l.field.Tag.Lookup("default")
	if !ok || !l.value.IsZero() {
		return nil
	}
	if err := assign(l.value, def); err != nil {
		return fmt.Errorf("config: default for %s: %w", l.field.Name, err)
	}
	return nil
}

func applyEnv(l leaf) error {
	if l.envKey == "" {
		return nil
	}
	raw, ok := os.LookupEnv(l.envKey)
	if !ok {
		return nil
	}
	if err := assign(l.value, raw); err != nil {
		return fmt.Errorf("config: parse %s: %w", l.envKey, err)
	}
	return nil
}

func normalizeKey(prefix, key string) string {
	key = strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// assign parses raw into field according to its type.
func assign(field reflect.Value, raw string) error {
	ft := field.Type()
	if ft == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	var err error
	switch ft.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		var b bool
		if b, err = strconv.ParseBool(raw); err == nil {
			field.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, err = strconv.ParseInt(raw, 10, ft.Bits()); err == nil {
			field.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		if n, err = strconv.ParseUint(raw, 10, ft.Bits()); err == nil {
			field.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, err = strconv.ParseFloat(raw, ft.Bits()); err == nil {
			field.SetFloat(f)
		}
	case reflect.Slice:
		if ft.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", ft)
		}
		parts := splitList(raw)
		slice := reflect.MakeSlice(ft, len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(p)
		}
		field.Set(slice)
	default:
		return fmt.Errorf("unsupported field type %s", ft)
	}
	return err
}

// splitList parses "a, b,,c" into [a b c].
func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
