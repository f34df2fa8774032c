package transform

import (
	"archive/zip"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/slok/opsdesk/internal/utils/file"
	"github.com/slok/opsdesk/internal/utils/params"
)

// Builtins is the source of the transforms compiled into the binary.
var Builtins Source = SourceFunc(func(_ context.Context, base Funcs) (Funcs, error) {
	funcs := copyFuncs(base)
	for name, f := range builtinCommandFuncs {
		funcs.Command[name] = f
	}
	for name, f := range builtinLoadFuncs {
		funcs.Load[name] = f
	}
	return funcs, nil
})

var builtinCommandFuncs = map[string]CommandFunc{
	"base64_encode": func(_ context.Context, value, _ string) (string, error) {
		return base64.StdEncoding.EncodeToString([]byte(value)), nil
	},
	"base64_decode": func(_ context.Context, value, _ string) (string, error) {
		b, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", fmt.Errorf("invalid base64: %w", err)
		}
		return string(b), nil
	},
	"hex_encode": func(_ context.Context, value, _ string) (string, error) {
		return hex.EncodeToString([]byte(value)), nil
	},
	"prepend": func(_ context.Context, value, parameter string) (string, error) {
		return parameter + value, nil
	},
	"append": func(_ context.Context, value, parameter string) (string, error) {
		return value + parameter, nil
	},
	"upper": func(_ context.Context, value, _ string) (string, error) {
		return strings.ToUpper(value), nil
	},
	"lower": func(_ context.Context, value, _ string) (string, error) {
		return strings.ToLower(value), nil
	},
	"trim": func(_ context.Context, value, parameter string) (string, error) {
		if parameter == "" {
			return strings.TrimSpace(value), nil
		}
		return strings.Trim(value, parameter), nil
	},
	// replace parameter format is "old=>new".
	"replace": func(_ context.Context, value, parameter string) (string, error) {
		from, to, ok := strings.Cut(parameter, "=>")
		if !ok || from == "" {
			return "", fmt.Errorf(`replace parameter must be "old=>new", got %q`, parameter)
		}
		return strings.ReplaceAll(value, from, to), nil
	},
	// json_wrap wraps the value as a string field of a JSON object.
	"json_wrap": func(_ context.Context, value, parameter string) (string, error) {
		if parameter == "" {
			return "", fmt.Errorf("json_wrap requires the key as parameter")
		}
		return params.Encode(map[string]string{parameter: value})
	},
	// json_set sets a string key of a JSON object value, parameter format is "key=value".
	"json_set": func(_ context.Context, value, parameter string) (string, error) {
		key, v, ok := strings.Cut(parameter, "=")
		if !ok || key == "" {
			return "", fmt.Errorf(`json_set parameter must be "key=value", got %q`, parameter)
		}
		out, err := params.Set(value, []string{key}, map[string]any{key: v})
		if err != nil {
			return "", fmt.Errorf("value is not a JSON object: %w", err)
		}
		return out, nil
	},
}

var builtinLoadFuncs = map[string]LoadFunc{
	// collect copies every input into the working dir.
	"collect": func(_ context.Context, env LoadEnv, paths []string, _ string) ([]string, error) {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			dst := filepath.Join(env.WorkingDir, filepath.Base(p))
			if err := file.Copy(p, dst); err != nil {
				return nil, err
			}
			out = append(out, dst)
		}
		return out, nil
	},
	// concat joins every input into a single file named after the parameter.
	"concat": func(_ context.Context, env LoadEnv, paths []string, parameter string) ([]string, error) {
		name := parameter
		if name == "" {
			name = "combined"
		}
		dst := filepath.Join(env.WorkingDir, name)
		out, err := os.Create(dst)
		if err != nil {
			return nil, fmt.Errorf("could not create %q: %w", dst, err)
		}
		defer out.Close()

		for _, p := range paths {
			in, err := os.Open(p)
			if err != nil {
				return nil, fmt.Errorf("could not open %q: %w", p, err)
			}
			_, err = io.Copy(out, in)
			in.Close()
			if err != nil {
				return nil, fmt.Errorf("could not append %q: %w", p, err)
			}
			if _, err := out.WriteString("\n"); err != nil {
				return nil, err
			}
		}
		return []string{dst}, nil
	},
	// zip archives every input into a single file named after the parameter.
	"zip": func(_ context.Context, env LoadEnv, paths []string, parameter string) ([]string, error) {
		name := parameter
		if name == "" {
			name = "load"
		}
		dst := filepath.Join(env.WorkingDir, name+".zip")
		f, err := os.Create(dst)
		if err != nil {
			return nil, fmt.Errorf("could not create %q: %w", dst, err)
		}
		defer f.Close()

		zw := zip.NewWriter(f)
		for _, p := range paths {
			w, err := zw.Create(filepath.Base(p))
			if err != nil {
				return nil, err
			}
			in, err := os.Open(p)
			if err != nil {
				return nil, fmt.Errorf("could not open %q: %w", p, err)
			}
			_, err = io.Copy(w, in)
			in.Close()
			if err != nil {
				return nil, fmt.Errorf("could not archive %q: %w", p, err)
			}
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("could not close archive: %w", err)
		}
		return []string{dst}, nil
	},
	// base64 encodes every input into a sibling file in the working dir.
	"base64": func(_ context.Context, env LoadEnv, paths []string, _ string) ([]string, error) {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("could not read %q: %w", p, err)
			}
			dst := filepath.Join(env.WorkingDir, filepath.Base(p)+".b64")
			if err := os.WriteFile(dst, []byte(base64.StdEncoding.EncodeToString(b)), 0644); err != nil {
				return nil, fmt.Errorf("could not write %q: %w", dst, err)
			}
			out = append(out, dst)
		}
		return out, nil
	},
}
