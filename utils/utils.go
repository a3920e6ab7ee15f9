package utils

import (
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

var statikSourceDir string

func init() {
	_, file, _, _ := runtime.Caller(0)
	statikSourceDir = sourceDir(file)
}

func sourceDir(file string) string {
	dir := filepath.Dir(file)
	dir = filepath.Dir(dir)
	return filepath.ToSlash(dir) + "/"
}

// FileWithLineNum return the file name and line number of the first caller outside this module
func FileWithLineNum() string {
	// the second caller usually from statik internal, so set i start from 2
	for i := 2; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && (!strings.HasPrefix(file, statikSourceDir) || strings.HasSuffix(file, "_test.go")) {
			return file + ":" + strconv.FormatInt(int64(line), 10)
		}
	}

	return ""
}

// ExtractFilename returns the base name of path without its extension
func ExtractFilename(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// URLFileExt returns the extension of the last segment of a URL path. Dot
// files such as ".htaccess" count as their own extension.
func URLFileExt(url string) string {
	segments := strings.Split(url, "/")
	return path.Ext(segments[len(segments)-1])
}

// AddURLPathComponent joins component onto p with exactly one slash
func AddURLPathComponent(p, component string) string {
	return strings.TrimRight(p, "/") + "/" + strings.TrimLeft(component, "/")
}

// UnderscoreKeys replaces dashes with underscores in map keys, recursively
func UnderscoreKeys(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]interface{}); ok {
			v = UnderscoreKeys(sub)
		}
		result[strings.ReplaceAll(k, "-", "_")] = v
	}
	return result
}

// StringKeys converts map[interface{}]interface{} values produced by some
// decoders into map[string]interface{}, recursively
func StringKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(val))
		for k, item := range val {
			result[fmt.Sprint(k)] = StringKeys(item)
		}
		return result
	case map[string]interface{}:
		for k, item := range val {
			val[k] = StringKeys(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = StringKeys(item)
		}
		return val
	}
	return v
}

// Contains reports whether elem is in elems
func Contains(elems []string, elem string) bool {
	for _, e := range elems {
		if elem == e {
			return true
		}
	}
	return false
}

// ToDBName convert CamelCase names to snake_case
func ToDBName(name string) string {
	if name == "" {
		return ""
	}

	var (
		buf                            strings.Builder
		value                          = name
		lastCase, nextCase, nextNumber bool // upper case == true
		curCase                        = value[0] <= 'Z' && value[0] >= 'A'
	)

	for i, v := range value[:len(value)-1] {
		nextCase = value[i+1] <= 'Z' && value[i+1] >= 'A'
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if lastCase && (nextCase || nextNumber) {
				buf.WriteRune(v + 32)
			} else {
				if i > 0 && value[i-1] != '_' && value[i+1] != '_' {
					buf.WriteByte('_')
				}
				buf.WriteRune(v + 32)
			}
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(value[len(value)-1] + 32)
	} else {
		buf.WriteByte(value[len(value)-1])
	}

	return buf.String()
}
