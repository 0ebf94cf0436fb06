package resources

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/ose/engine/core"
)

func (rm *Manager) GetMaterial(name string) *Material {
	m, _, _ := rm.materials.get(name)
	return m
}

func (rm *Manager) MaterialNames() []string {
	return rm.materials.allNames()
}

/**
 * @brief Builds a material from the property file at Resources/path. Every
 * `tex` line adds its texture and fills the next slot, in file order. The
 * `shader` line adds and binds the shader program.
 * @param path The material file path, relative to the Resources directory.
 * @param name The material name. Defaults to path when empty.
 */
func (rm *Manager) AddMaterial(path, name string) error {
	absPath, name, err := rm.resolve(ResourceTypeMaterial, path, name)
	if err != nil {
		return err
	}
	if rm.materials.has(name) {
		return nameTaken(ResourceTypeMaterial, name)
	}

	props, err := LoadPropertyFile(absPath)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	material := &Material{Name: name, Path: absPath}
	for _, texPath := range props.All(materialKeyTexture) {
		// An already registered texture is shared, not an error.
		if err := rm.AddTexture(texPath, ""); err != nil && !errors.Is(err, ErrNameTaken) {
			core.LogWarn("material '%s': texture slot %d ('%s') left empty", name, len(material.Textures), texPath)
		}
		material.AddTexture(rm.GetTexture(texPath))
	}

	if shader, ok := props.Get(materialKeyShader); ok {
		if err := rm.AddShaderProg(shader, ""); err != nil && !errors.Is(err, ErrNameTaken) {
			core.LogWarn("material '%s': shader program '%s' unavailable", name, shader)
		}
		material.ShaderProg = rm.GetShaderProg(shader)
	} else {
		core.LogWarn("material '%s' has no shader program", name)
	}

	rm.materials.insert(name, material)
	core.LogDebug("material '%s' added with %d texture slots", name, len(material.Textures))
	return nil
}

// RemoveMaterial forgets a material. Its textures and shader program stay registered.
func (rm *Manager) RemoveMaterial(name string) error {
	if !rm.materials.has(name) {
		return nil
	}
	if IsBuiltinName(name) {
		err := fmt.Errorf("material '%s': %w", name, ErrBuiltinResource)
		core.LogWarn(err.Error())
		return err
	}
	rm.materials.remove(name)
	return nil
}

// rebindMaterialTextures points every material slot holding old at replacement.
func (rm *Manager) rebindMaterialTextures(old, replacement *Texture) {
	for _, e := range rm.materials.items {
		for i, t := range e.resource.Textures {
			if t == old {
				e.resource.Textures[i] = replacement
			}
		}
	}
}
