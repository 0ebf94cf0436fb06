package resources

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/ose/engine/core"
)

// Manager owns every resource of a project. It deduplicates by name, loads CPU
// payloads synchronously through the loader capabilities and moves GPU backed
// kinds between the unrealized and realized states on the render thread.
//
// The manager does no locking. Drive it from a single goroutine.
type Manager struct {
	projectPath string

	textures    *registry[Texture]
	shaderProgs *registry[ShaderProg]
	materials   *registry[Material]
	meshes      *registry[Mesh]
	tilemaps    *registry[Tilemap]

	textureLoader TextureLoader
	meshLoader    MeshLoader
	tilemapLoader TilemapLoader
	factory       RenderingFactory
}

// NewManager creates the manager for the project rooted at projectPath and
// registers the built-in shader programs and default materials.
func NewManager(projectPath string, caps Capabilities) (*Manager, error) {
	switch {
	case caps.TextureLoader == nil:
		return nil, fmt.Errorf("texture loader: %w", ErrMissingCapability)
	case caps.MeshLoader == nil:
		return nil, fmt.Errorf("mesh loader: %w", ErrMissingCapability)
	case caps.TilemapLoader == nil:
		return nil, fmt.Errorf("tilemap loader: %w", ErrMissingCapability)
	case caps.Factory == nil:
		return nil, fmt.Errorf("rendering factory: %w", ErrMissingCapability)
	}

	rm := &Manager{
		projectPath:   projectPath,
		textures:      newRegistry[Texture](ResourceTypeTexture),
		shaderProgs:   newRegistry[ShaderProg](ResourceTypeShaderProg),
		materials:     newRegistry[Material](ResourceTypeMaterial),
		meshes:        newRegistry[Mesh](ResourceTypeMesh),
		tilemaps:      newRegistry[Tilemap](ResourceTypeTilemap),
		textureLoader: caps.TextureLoader,
		meshLoader:    caps.MeshLoader,
		tilemapLoader: caps.TilemapLoader,
		factory:       caps.Factory,
	}

	if err := rm.addDefaults(); err != nil {
		return nil, err
	}

	core.LogInfo("Resource manager initialized with project path '%s'.", projectPath)
	return rm, nil
}

func (rm *Manager) addDefaults() error {
	if err := rm.AddShaderProg(BuiltinShaderDefault2d, ""); err != nil {
		return err
	}
	if err := rm.AddShaderProg(BuiltinShaderDefault3d, ""); err != nil {
		return err
	}
	shader2d := rm.GetShaderProg(BuiltinShaderDefault2d)
	shader3d := rm.GetShaderProg(BuiltinShaderDefault3d)

	rm.materials.insert(DefaultMaterial2d, &Material{Name: DefaultMaterial2d, ShaderProg: shader2d})
	rm.materials.insert(DefaultMaterial2dAlpha, &Material{Name: DefaultMaterial2dAlpha, ShaderProg: shader2d, AlphaBlending: true})
	rm.materials.insert(DefaultMaterial3d, &Material{Name: DefaultMaterial3d, ShaderProg: shader3d})
	return nil
}

func (rm *Manager) ProjectPath() string {
	return rm.projectPath
}

// ResourcesPath is the absolute path of the project's Resources directory.
func (rm *Manager) ResourcesPath() string {
	return filepath.Join(rm.projectPath, ResourcesDir)
}

// AbsPath resolves a path relative to the Resources directory.
func (rm *Manager) AbsPath(path string) string {
	return filepath.Join(rm.ResourcesPath(), filepath.FromSlash(path))
}

// resolve maps a relative resource path to its absolute location and the name
// the resource is registered under. It fails when the file does not exist.
func (rm *Manager) resolve(kind ResourceType, path, name string) (string, string, error) {
	absPath := rm.AbsPath(path)
	if !fileExists(absPath) {
		err := fmt.Errorf("%s file %s: %w", kind, absPath, ErrFileNotFound)
		core.LogWarn(err.Error())
		return "", "", err
	}
	if name == "" {
		name = path
	}
	return absPath, name, nil
}

func nameTaken(kind ResourceType, name string) error {
	err := fmt.Errorf("%s name '%s': %w", kind, name, ErrNameTaken)
	core.LogError(err.Error())
	return err
}

// ImportFile copies the file at srcPath into Resources/subDir, keeping its file name.
func (rm *Manager) ImportFile(srcPath, subDir string) error {
	dst := filepath.Join(rm.ResourcesPath(), filepath.FromSlash(subDir), filepath.Base(srcPath))
	if filepath.Ext(srcPath) == ".meta" {
		err := fmt.Errorf("refusing to import meta file %s", srcPath)
		core.LogError(err.Error())
		return err
	}
	if err := copyFile(srcPath, dst); err != nil {
		core.LogError("could not import %s to %s: %s", srcPath, dst, err.Error())
		return err
	}
	core.LogInfo("imported %s to %s", srcPath, dst)
	return nil
}

// ImportFiles imports every file, continuing past failures.
func (rm *Manager) ImportFiles(srcPaths []string, subDir string) error {
	var errs []error
	for _, p := range srcPaths {
		if err := rm.ImportFile(p, subDir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DestroyAll releases the GPU memory of every realized resource. Used on shutdown.
func (rm *Manager) DestroyAll(rt *core.RenderThread) error {
	if err := rt.Check("DestroyAll"); err != nil {
		return err
	}
	var errs []error
	for _, name := range rm.textures.names(Realized) {
		if err := rm.DestroyTexture(rt, name); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range rm.shaderProgs.names(Realized) {
		if err := rm.DestroyShaderProg(rt, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
