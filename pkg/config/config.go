// Package config provides YAML/TOML configuration loading with environment variable override.
package config

import (
	"encoding"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML or TOML configuration file into the given struct.
// The format is picked from the file extension (.toml, otherwise YAML).
// It also applies environment variable overrides using struct tags.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	// Expand environment variables in the file
	expanded := []byte(os.ExpandEnv(string(data)))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(expanded, out); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(expanded, out); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	return ApplyEnv(out)
}

// LoadOrDefault tries to load config from path. A missing file keeps the
// values already in out, but env overrides are still applied.
func LoadOrDefault(path string, out any) error {
	if path == "" {
		return ApplyEnv(out)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ApplyEnv(out)
	}
	return Load(path, out)
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// ApplyEnv sets struct fields from environment variables.
// It uses the `env` struct tag to determine the env var name.
func ApplyEnv(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := val.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		envTag := field.Tag.Get("env")
		isText := fieldVal.CanAddr() && fieldVal.Addr().Type().Implements(textUnmarshalerType)

		// Recurse into nested config sections
		if fieldVal.Kind() == reflect.Struct && !isText {
			if err := ApplyEnv(fieldVal.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if envTag == "" {
			continue
		}
		envVal, ok := os.LookupEnv(envTag)
		if !ok {
			continue
		}

		if isText {
			if err := fieldVal.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(envVal)); err != nil {
				return fmt.Errorf("env %s: %w", envTag, err)
			}
			continue
		}

		switch fieldVal.Kind() {
		case reflect.String:
			fieldVal.SetString(envVal)
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(strings.TrimSpace(envVal), 10, 64)
			if err != nil {
				return fmt.Errorf("env %s: %w", envTag, err)
			}
			fieldVal.SetInt(n)
		case reflect.Float64:
			f, err := strconv.ParseFloat(strings.TrimSpace(envVal), 64)
			if err != nil {
				return fmt.Errorf("env %s: %w", envTag, err)
			}
			fieldVal.SetFloat(f)
		case reflect.Bool:
			fieldVal.SetBool(strings.EqualFold(envVal, "true") || envVal == "1")
		case reflect.Slice:
			if fieldVal.Type().Elem().Kind() != reflect.String {
				continue
			}
			var items []string
			for _, part := range strings.Split(envVal, ",") {
				if part = strings.TrimSpace(part); part != "" {
					items = append(items, part)
				}
			}
			fieldVal.Set(reflect.ValueOf(items))
		}
	}
	return nil
}
