package statik

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/statikgen/statik/external"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/logger"
	"github.com/statikgen/statik/schema"
	"github.com/statikgen/statik/templating"
	"github.com/statikgen/statik/tree"
	"github.com/statikgen/statik/view"
)

// Project folders
const (
	ModelsDir    = "models"
	DataDir      = "data"
	ViewsDir     = "views"
	TemplatesDir = "templates"
	ThemesDir    = "themes"
	AssetsDir    = "assets"
)

// Project a project on disk
type Project struct {
	Path   string
	Config *ProjectConfig
	Logger logger.Interface
	// NowFunc reference time for partial dates in records
	NowFunc        func() time.Time
	NamingStrategy schema.Namer
	Context        context.Context
}

// ProjectOption overrides a project setting
type ProjectOption func(*Project)

// WithLogger sets the logger instead of building one from config.yml
func WithLogger(l logger.Interface) ProjectOption {
	return func(p *Project) { p.Logger = l }
}

// WithSafeMode forces safe mode on or off
func WithSafeMode(safe bool) ProjectOption {
	return func(p *Project) { p.Config.SafeMode = safe }
}

// WithNowFunc sets the reference time used to read partial dates
func WithNowFunc(now func() time.Time) ProjectOption {
	return func(p *Project) { p.NowFunc = now }
}

// WithContext sets the context handed to the logger and the external import
func WithContext(ctx context.Context) ProjectOption {
	return func(p *Project) {
		if ctx != nil {
			p.Context = ctx
		}
	}
}

// OpenProject reads the configuration of the project at path
func OpenProject(path string, opts ...ProjectOption) (*Project, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		path = filepath.Dir(path)
	}

	p := &Project{
		Path:           path,
		Config:         config,
		NamingStrategy: schema.NamingStrategy{},
		Context:        context.Background(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.Logger == nil {
		level, _ := logger.ParseLevel(config.Log.Level)
		if p.Logger, err = logger.New(config.Log.Backend, logger.Config{LogLevel: level}, os.Stderr); err != nil {
			return nil, errs.Wrap(errs.ErrProjectConfiguration, err, "log backend").WithFile(filepath.Join(path, ConfigFile))
		}
	}
	return p, nil
}

// GenerateOptions where a build goes
type GenerateOptions struct {
	// OutputPath folder written to, unless InMemory
	OutputPath string
	// InMemory only returns the tree
	InMemory bool
}

// Result outcome of a build
type Result struct {
	Tree   *tree.Node
	Files  int
	Assets int
}

// modeQuerier runs view queries in the mode of the build
type modeQuerier struct {
	db   *DB
	mode QueryMode
}

func (q modeQuerier) Query(spec interface{}, bindings map[string]interface{}) (interface{}, error) {
	return q.db.Query(spec, q.mode, bindings)
}

// Generate runs one full build: models, schema, records, templates, views,
// project context, expansion, then writing. The database only lives for the
// duration of the call.
func (p *Project) Generate(opts GenerateOptions) (result *Result, err error) {
	ctx := p.Context
	begin := time.Now()
	defer func() {
		if err != nil {
			p.Logger.Error(ctx, "build failed: %v", err)
		}
		p.Logger.Trace(ctx, begin, func() (string, int64) {
			if result == nil {
				return "build " + p.Config.ProjectName, -1
			}
			return "build " + p.Config.ProjectName, int64(result.Tree.Len())
		}, err)
	}()

	if !opts.InMemory && opts.OutputPath == "" {
		return nil, errs.New(errs.ErrMissingParameter, "an output path is required unless building in memory")
	}

	models, err := LoadModels(filepath.Join(p.Path, ModelsDir), p.NamingStrategy)
	if err != nil {
		return nil, err
	}

	if err := p.importExternal(models); err != nil {
		return nil, err
	}

	db, err := Open(models, &Config{
		NamingStrategy: p.NamingStrategy,
		Logger:         p.Logger,
		NowFunc:        p.NowFunc,
		Markdown:       p.Config.MarkdownOptions(),
		Context:        ctx,
	})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := db.Populate(filepath.Join(p.Path, DataDir)); err != nil {
		return nil, err
	}

	engine, err := templating.NewEngine(templating.Options{
		Providers: p.Config.Templates.Providers,
		Paths:     templating.SearchPaths(p.Path, p.Config.Theme),
		BasePath:  p.Config.BasePath,
	})
	if err != nil {
		return nil, err
	}

	initial := map[string]interface{}{
		"project_name": p.Config.ProjectName,
		"base_path":    p.Config.BasePath,
	}
	views, err := view.LoadDir(filepath.Join(p.Path, ViewsDir), view.ParseOptions{Initial: initial})
	if err != nil {
		return nil, err
	}

	querier := modeQuerier{db: db, mode: Unsafe}
	if p.Config.SafeMode {
		querier.mode = Safe
	}

	projectContext, err := p.projectContext(querier, initial)
	if err != nil {
		return nil, err
	}

	expander, err := view.NewExpander(views, querier, engine, &view.Config{
		DefaultFilename: p.Config.Output.DefaultFilename,
		DefaultExt:      p.Config.Output.DefaultExt,
		Workers:         p.Config.Build.Workers,
		Logger:          p.Logger,
		Context:         ctx,
	})
	if err != nil {
		return nil, err
	}
	engine.Funcs.SetURLResolver(expander.URL)

	root, err := expander.RenderAll(projectContext)
	if err != nil {
		return nil, err
	}
	result = &Result{Tree: root}
	if opts.InMemory {
		return result, nil
	}

	layout := tree.Pretty
	if p.Config.Output.Layout == LayoutStandard {
		layout = tree.Standard
	}
	if result.Files, err = tree.Write(root, opts.OutputPath, layout, p.Config.Output.DefaultFilename+p.Config.Output.DefaultExt); err != nil {
		return nil, err
	}
	p.Logger.Info(ctx, "wrote %d file(s) to %s", result.Files, opts.OutputPath)

	if result.Assets, err = p.copyAssets(opts.OutputPath); err != nil {
		return nil, err
	}
	return result, nil
}

// projectContext the project name and base path plus the static and dynamic
// context of config.yml, handed to every view as extra context
func (p *Project) projectContext(querier modeQuerier, initial map[string]interface{}) (map[string]interface{}, error) {
	ctx := make(map[string]interface{}, len(initial)+len(p.Config.Context.Static)+len(p.Config.Context.Dynamic))
	for k, v := range initial {
		ctx[k] = v
	}
	for k, v := range p.Config.Context.Static {
		ctx[k] = v
	}
	for k, q := range p.Config.Context.Dynamic {
		value, err := querier.Query(q, nil)
		if err != nil {
			return nil, errs.InFile(err, errs.ErrProjectConfiguration, filepath.Join(p.Path, ConfigFile))
		}
		ctx[k] = value
	}
	return ctx, nil
}

func (p *Project) importExternal(models map[string]*schema.Model) error {
	cfg := p.Config.ExternalDatabase
	if cfg == nil {
		return nil
	}

	importer, err := external.Open(&external.Config{
		Type:     cfg.Type,
		DSN:      cfg.DSN,
		Override: cfg.Override,
		Models:   cfg.Models,
		Logger:   p.Logger,
	})
	if err != nil {
		return err
	}
	defer importer.Close()

	_, err = importer.Import(p.Context, models, filepath.Join(p.Path, DataDir))
	return err
}

// copyAssets copies the theme assets then the project assets, so project
// files win, skipping files whose copy is already up to date
func (p *Project) copyAssets(outputPath string) (int, error) {
	var sources []string
	if p.Config.Theme != "" {
		sources = append(sources, filepath.Join(p.Path, ThemesDir, p.Config.Theme, AssetsDir))
	}
	if filepath.IsAbs(p.Config.Assets.Source) {
		sources = append(sources, p.Config.Assets.Source)
	} else {
		sources = append(sources, filepath.Join(p.Path, p.Config.Assets.Source))
	}

	dest := p.Config.Assets.Dest
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(outputPath, dest)
	}

	copied := 0
	written := map[string]bool{}
	for _, source := range sources {
		if info, err := os.Stat(source); err != nil || !info.IsDir() {
			p.Logger.Debug(p.Context, "no assets in %s", source)
			continue
		}
		n, err := copyTree(source, dest, written)
		copied += n
		if err != nil {
			return copied, err
		}
		p.Logger.Info(p.Context, "copied %d asset(s) from %s to %s", n, source, dest)
	}
	return copied, nil
}

// copyTree copies source into dest. Files already in written, copied from an
// earlier source of the same build, are always replaced.
func copyTree(source, dest string, written map[string]bool) (int, error) {
	copied := 0
	err := filepath.WalkDir(source, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if existing, err := os.Stat(target); err == nil && !written[target] &&
			existing.Size() == info.Size() && !existing.ModTime().Before(info.ModTime()) {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := atomic.WriteFile(target, f); err != nil {
			return err
		}
		written[target] = true
		copied++
		return nil
	})
	if err != nil {
		return copied, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot copy assets").WithFile(source)
	}
	return copied, nil
}
