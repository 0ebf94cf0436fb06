package resources

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spaghettifunk/ose/engine/core"
)

const textureMetaExt = ".meta"

// GetTexture returns the texture registered under name, nil when absent.
func (rm *Manager) GetTexture(name string) *Texture {
	t, _, _ := rm.textures.get(name)
	return t
}

func (rm *Manager) TextureResidency(name string) (Residency, bool) {
	_, r, ok := rm.textures.get(name)
	return r, ok
}

// TextureNames returns every registered texture name, sorted.
func (rm *Manager) TextureNames() []string {
	return rm.textures.allNames()
}

/**
 * @brief Loads the image at Resources/path and registers it as an unrealized
 * texture. The .meta sidecar is read when present and written with default
 * values otherwise. A decode failure keeps the texture with empty pixel data.
 * @param path The image path, relative to the Resources directory.
 * @param name The texture name. Defaults to path when empty.
 */
func (rm *Manager) AddTexture(path, name string) error {
	absPath, name, err := rm.resolve(ResourceTypeTexture, path, name)
	if err != nil {
		return err
	}
	if rm.textures.has(name) {
		return nameTaken(ResourceTypeTexture, name)
	}

	texture, err := rm.loadTexture(absPath, path, name)
	if err != nil {
		core.LogError("failed to decode texture %s: %s", absPath, err.Error())
	}

	rm.textures.insert(name, texture)
	core.LogDebug("texture '%s' added (%dx%d, %d channels)", name, texture.Width(), texture.Height(), texture.Channels())
	return nil
}

// loadTexture builds an unregistered texture. On a decode error the texture is
// still returned, holding the empty sentinel.
func (rm *Manager) loadTexture(absPath, path, name string) (*Texture, error) {
	texture := &Texture{
		Name:         name,
		Path:         absPath,
		RelativePath: path,
		Meta:         rm.loadOrCreateTextureMeta(absPath),
	}
	texture.gpu = rm.factory.NewTexture(texture)

	data, err := rm.textureLoader.LoadTexture(absPath)
	if err != nil {
		return texture, err
	}
	texture.data = data
	return texture, nil
}

func (rm *Manager) loadOrCreateTextureMeta(absPath string) TextureMetaData {
	metaPath := absPath + textureMetaExt
	if !fileExists(metaPath) {
		if err := os.WriteFile(metaPath, []byte(defaultTextureMetaFile), 0o644); err != nil {
			core.LogError("could not write default meta file %s: %s", metaPath, err.Error())
		}
		return DefaultTextureMetaData()
	}
	meta, err := rm.LoadTextureMetaFile(metaPath)
	if err != nil {
		core.LogError(err.Error())
		return DefaultTextureMetaData()
	}
	return meta
}

// LoadTextureMetaFile reads a texture .meta file. Malformed values are logged and
// leave the default for that property. Only a read failure is returned.
func (rm *Manager) LoadTextureMetaFile(metaPath string) (TextureMetaData, error) {
	meta := DefaultTextureMetaData()
	props, err := LoadPropertyFile(metaPath)
	if err != nil {
		return meta, err
	}

	props.Each(func(key, value string) {
		var target *uint32
		var filter *TextureFilterMode
		switch key {
		case "mag_filter_mode":
			filter = &meta.MagFilterMode
		case "min_filter_mode":
			filter = &meta.MinFilterMode
		case "min_LOD":
			target = &meta.MinLOD
		case "max_LOD":
			target = &meta.MaxLOD
		case "LOD_bias":
			target = &meta.LODBias
		case "mip_mapping_enabled":
		default:
			return
		}

		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			core.LogWarn("%s: invalid value '%s' for '%s', keeping default", metaPath, value, key)
			return
		}
		switch {
		case filter != nil:
			*filter = TextureFilterMode(v)
		case target != nil:
			*target = uint32(v)
		default:
			meta.MipMappingEnabled = v != 0
		}
	})
	return meta, nil
}

// CreateTexture uploads the named texture to GPU memory.
func (rm *Manager) CreateTexture(rt *core.RenderThread, name string) error {
	if err := rt.Check("CreateTexture"); err != nil {
		return err
	}
	texture, residency, ok := rm.textures.get(name)
	if !ok {
		return fmt.Errorf("texture '%s': %w", name, ErrNotFound)
	}
	if residency == Realized {
		return nil
	}
	if err := texture.gpu.Create(); err != nil {
		core.LogError("failed to create texture '%s': %s", name, err.Error())
		return fmt.Errorf("create texture '%s': %w", name, err)
	}
	rm.textures.setResidency(name, Realized)
	return nil
}

// CreateTextures realizes every unrealized texture. Failures do not stop the
// remaining uploads and are returned joined.
func (rm *Manager) CreateTextures(rt *core.RenderThread) error {
	if err := rt.Check("CreateTextures"); err != nil {
		return err
	}
	var errs []error
	for _, name := range rm.textures.names(Unrealized) {
		if err := rm.CreateTexture(rt, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DestroyTexture frees the GPU memory of the named texture. The pixel data is kept.
func (rm *Manager) DestroyTexture(rt *core.RenderThread, name string) error {
	if err := rt.Check("DestroyTexture"); err != nil {
		return err
	}
	texture, residency, ok := rm.textures.get(name)
	if !ok {
		return fmt.Errorf("texture '%s': %w", name, ErrNotFound)
	}
	if residency != Realized {
		return fmt.Errorf("texture '%s': %w", name, ErrNotResident)
	}
	if err := texture.gpu.Destroy(); err != nil {
		core.LogError("failed to destroy texture '%s': %s", name, err.Error())
		return fmt.Errorf("destroy texture '%s': %w", name, err)
	}
	rm.textures.setResidency(name, Unrealized)
	return nil
}

// RemoveTexture frees the pixel data of an unrealized texture and forgets it.
func (rm *Manager) RemoveTexture(name string) error {
	texture, residency, ok := rm.textures.get(name)
	if !ok {
		return nil
	}
	if residency == Realized {
		core.LogWarn("texture '%s' is resident, destroy it before removing", name)
		return fmt.Errorf("remove texture '%s': %w", name, ErrResourceResident)
	}
	if !texture.Empty() {
		rm.textureLoader.FreeTexture(texture.data)
	}
	texture.data = TextureData{}
	rm.textures.remove(name)
	return nil
}

// ReloadTexture decodes the texture again from its source path, keeping its name
// and residency. If the new copy cannot be decoded or uploaded the old texture
// stays registered as it was.
func (rm *Manager) ReloadTexture(rt *core.RenderThread, name string) error {
	if err := rt.Check("ReloadTexture"); err != nil {
		return err
	}
	texture, residency, ok := rm.textures.get(name)
	if !ok {
		return fmt.Errorf("texture '%s': %w", name, ErrNotFound)
	}

	absPath, _, err := rm.resolve(ResourceTypeTexture, texture.RelativePath, name)
	if err != nil {
		return fmt.Errorf("reload texture '%s': %w", name, err)
	}
	replacement, err := rm.loadTexture(absPath, texture.RelativePath, name)
	if err != nil {
		core.LogError("failed to reload texture '%s', keeping the loaded copy: %s", name, err.Error())
		return fmt.Errorf("reload texture '%s': %w", name, err)
	}
	if residency == Realized {
		if err := replacement.gpu.Create(); err != nil {
			rm.textureLoader.FreeTexture(replacement.data)
			core.LogError("failed to create reloaded texture '%s', keeping the loaded copy: %s", name, err.Error())
			return fmt.Errorf("reload texture '%s': %w", name, err)
		}
		if err := texture.gpu.Destroy(); err != nil {
			core.LogWarn("failed to destroy replaced texture '%s': %s", name, err.Error())
		}
	}
	if !texture.Empty() {
		rm.textureLoader.FreeTexture(texture.data)
	}
	texture.data = TextureData{}

	rm.textures.insert(name, replacement)
	rm.textures.setResidency(name, residency)
	rm.rebindMaterialTextures(texture, replacement)
	core.LogInfo("texture '%s' reloaded", name)
	return nil
}
