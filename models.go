package statik

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
	"github.com/statikgen/statik/utils"
)

// LoadModels parses every `*.yml` / `*.yaml` declaration in dir, the file
// stem being the model name, and links back-populated relationships
func LoadModels(dir string, namer schema.Namer) (map[string]*schema.Model, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot list models").WithFile(dir)
	}

	paths := map[string]string{}
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if file.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		name := utils.ExtractFilename(file.Name())
		if previous, ok := paths[name]; ok {
			return nil, errs.New(errs.ErrModel, "model declared twice, also in %s", previous).
				WithModel(name).WithFile(filepath.Join(dir, file.Name()))
		}
		paths[name] = filepath.Join(dir, file.Name())
	}

	known := make([]string, 0, len(paths))
	for name := range paths {
		known = append(known, name)
	}
	sort.Strings(known)

	models := make(map[string]*schema.Model, len(known))
	for _, name := range known {
		data, err := os.ReadFile(paths[name])
		if err != nil {
			return nil, errs.Wrap(errs.ErrModel, err, "cannot read declaration").WithModel(name).WithFile(paths[name])
		}
		decl, err := schema.DecodeDeclaration(data)
		if err != nil {
			return nil, errs.InFile(err, errs.ErrModel, paths[name])
		}
		model, err := schema.ParseModel(name, decl, known, namer)
		if err != nil {
			return nil, errs.InFile(err, errs.ErrModel, paths[name])
		}
		models[name] = model
	}

	if err := schema.InferBackReferences(models); err != nil {
		return nil, err
	}
	return models, nil
}
