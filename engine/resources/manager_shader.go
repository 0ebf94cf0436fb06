package resources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/ose/engine/core"
)

// Keys recognized in a custom shader program property file.
const (
	shaderKeyVertex   = "vertex"
	shaderKeyFragment = "fragment"
)

func (rm *Manager) GetShaderProg(name string) *ShaderProg {
	s, _, _ := rm.shaderProgs.get(name)
	return s
}

func (rm *Manager) ShaderProgResidency(name string) (Residency, bool) {
	_, r, ok := rm.shaderProgs.get(name)
	return r, ok
}

func (rm *Manager) ShaderProgNames() []string {
	return rm.shaderProgs.allNames()
}

/**
 * @brief Registers a shader program. Identifiers starting with the reserved
 * prefix select a built-in program and never touch the filesystem. Any other
 * identifier is a property file under Resources naming the stage sources.
 * @param identifier The built-in name or the program file path.
 * @param name The program name. Defaults to identifier when empty.
 */
func (rm *Manager) AddShaderProg(identifier, name string) error {
	if IsBuiltinName(identifier) {
		return rm.addBuiltinShaderProg(identifier, name)
	}

	absPath, name, err := rm.resolve(ResourceTypeShaderProg, identifier, name)
	if err != nil {
		return err
	}
	if rm.shaderProgs.has(name) {
		return nameTaken(ResourceTypeShaderProg, name)
	}

	src, err := rm.loadShaderSource(absPath)
	if err != nil {
		core.LogError("failed to load shader program %s: %s", absPath, err.Error())
		return err
	}

	prog := &ShaderProg{Name: name, Path: absPath, Source: src}
	prog.gpu = rm.factory.NewShaderProg(prog)
	rm.shaderProgs.insert(name, prog)
	core.LogDebug("shader program '%s' added", name)
	return nil
}

func (rm *Manager) addBuiltinShaderProg(identifier, name string) error {
	src, ok := builtinShaderSource(identifier)
	if !ok {
		err := fmt.Errorf("shader program '%s': %w", identifier, ErrUnknownBuiltinShader)
		core.LogError(err.Error())
		return err
	}
	if name == "" {
		name = identifier
	}
	if rm.shaderProgs.has(name) {
		return nameTaken(ResourceTypeShaderProg, name)
	}

	prog := &ShaderProg{Name: name, Builtin: true, Source: src}
	prog.gpu = rm.factory.NewShaderProg(prog)
	rm.shaderProgs.insert(name, prog)
	return nil
}

// Stage source paths in the program file are relative to Resources.
func (rm *Manager) loadShaderSource(absPath string) (ShaderSource, error) {
	var src ShaderSource
	props, err := LoadPropertyFile(absPath)
	if err != nil {
		return src, err
	}

	read := func(key string) (string, error) {
		rel, ok := props.Get(key)
		if !ok {
			return "", fmt.Errorf("%s: missing '%s' stage", filepath.Base(absPath), key)
		}
		raw, err := os.ReadFile(rm.AbsPath(rel))
		if err != nil {
			return "", fmt.Errorf("%s stage: %w", key, err)
		}
		return string(raw), nil
	}

	if src.Vertex, err = read(shaderKeyVertex); err != nil {
		return src, err
	}
	if src.Fragment, err = read(shaderKeyFragment); err != nil {
		return src, err
	}
	return src, nil
}

func (rm *Manager) CreateShaderProg(rt *core.RenderThread, name string) error {
	if err := rt.Check("CreateShaderProg"); err != nil {
		return err
	}
	prog, residency, ok := rm.shaderProgs.get(name)
	if !ok {
		return fmt.Errorf("shader program '%s': %w", name, ErrNotFound)
	}
	if residency == Realized {
		return nil
	}
	if err := prog.gpu.Create(); err != nil {
		core.LogError("failed to create shader program '%s': %s", name, err.Error())
		return fmt.Errorf("create shader program '%s': %w", name, err)
	}
	rm.shaderProgs.setResidency(name, Realized)
	return nil
}

func (rm *Manager) CreateShaderProgs(rt *core.RenderThread) error {
	if err := rt.Check("CreateShaderProgs"); err != nil {
		return err
	}
	var errs []error
	for _, name := range rm.shaderProgs.names(Unrealized) {
		if err := rm.CreateShaderProg(rt, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (rm *Manager) DestroyShaderProg(rt *core.RenderThread, name string) error {
	if err := rt.Check("DestroyShaderProg"); err != nil {
		return err
	}
	prog, residency, ok := rm.shaderProgs.get(name)
	if !ok {
		return fmt.Errorf("shader program '%s': %w", name, ErrNotFound)
	}
	if residency != Realized {
		return fmt.Errorf("shader program '%s': %w", name, ErrNotResident)
	}
	if err := prog.gpu.Destroy(); err != nil {
		core.LogError("failed to destroy shader program '%s': %s", name, err.Error())
		return fmt.Errorf("destroy shader program '%s': %w", name, err)
	}
	rm.shaderProgs.setResidency(name, Unrealized)
	return nil
}

// RemoveShaderProg forgets an unrealized shader program. Materials still holding
// it keep their reference. The built-in programs back the default materials and
// are never removed.
func (rm *Manager) RemoveShaderProg(name string) error {
	_, residency, ok := rm.shaderProgs.get(name)
	if !ok {
		return nil
	}
	if IsBuiltinName(name) {
		err := fmt.Errorf("shader program '%s': %w", name, ErrBuiltinResource)
		core.LogWarn(err.Error())
		return err
	}
	if residency == Realized {
		core.LogWarn("shader program '%s' is resident, destroy it before removing", name)
		return fmt.Errorf("remove shader program '%s': %w", name, ErrResourceResident)
	}
	rm.shaderProgs.remove(name)
	return nil
}
